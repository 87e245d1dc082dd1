package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/session"
)

func TestWorkOrdersNormalizeDecodedRecords(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 100, "client_id": 1, "vehicle_id": 10,
			"entry_date": "2024-01-01", "egress_date": "",
			"work_status": "IN_PROGRESS", "payment_status": "Bill Sent",
			"workers": "Luis", "detector": "", "details": "  "
		}]`))
	}))

	orders, err := f.client.WorkOrders().List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	require.Equal(t, model.WorkStatusInProgress, order.WorkStatus)
	require.Equal(t, model.PaymentBillSent, order.PaymentStatus)
	require.Nil(t, order.EgressDate)
	require.Equal(t, model.Unset, order.Detector)
	require.Nil(t, order.Details)
	require.Equal(t, "2024-01-01", order.EntryDate.String())
}

func TestVehiclesByOwner(t *testing.T) {
	t.Parallel()

	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /clients/3/vehicles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Vehicle{{ID: 10, VehicleInput: model.VehicleInput{OwnerID: 3, PlateNumber: "abc1"}}})
	})
	mux.HandleFunc("POST /clients/3/vehicles", func(w http.ResponseWriter, r *http.Request) {
		var in model.VehicleInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, int64(3), in.OwnerID)
		assert.Equal(t, "XYZ9", in.PlateNumber)
		writeJSON(w, http.StatusOK, model.Vehicle{ID: 11, VehicleInput: in})
	})
	mux.HandleFunc("DELETE /clients/3/vehicles/11", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(true)
		writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Vehicle deleted"})
	})

	f := newFixture(t, mux)
	ctx := context.Background()

	vehicles, err := f.client.Vehicles().ListByOwner(ctx, 3)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	require.Equal(t, "ABC1", vehicles[0].PlateNumber)

	created, err := f.client.Vehicles().CreateForOwner(ctx, 3, model.VehicleInput{PlateNumber: " xyz9 ", VehicleType: "Van", BrandModel: "Transit"})
	require.NoError(t, err)
	require.Equal(t, int64(11), created.ID)

	require.NoError(t, f.client.Vehicles().DeleteForOwner(ctx, 3, 11))
	require.True(t, deleted.Load())
}

func TestLoginIsAnonymousAndNeverRefreshes(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", refreshHandler(t, &refreshCalls))
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		var req model.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(w, http.StatusOK, model.TokenPair{
			AccessToken:  "a",
			RefreshToken: "r",
			TokenType:    "bearer",
			User:         &model.AuthUser{ID: 2, Username: req.Username, Role: model.RoleAdmin},
		})
	})

	f := newFixture(t, mux)
	ctx := context.Background()

	_, err := f.client.Auth().Login(ctx, "maria", "wrong")
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))
	require.ErrorContains(t, err, "Incorrect username or password")
	require.Zero(t, refreshCalls.Load())
	require.Equal(t, "old", session.AccessToken(f.store))

	pair, err := f.client.Auth().Login(ctx, "maria", "secret")
	require.NoError(t, err)
	require.NoError(t, f.client.Auth().SaveSession(pair))

	stored := session.Load(f.store)
	require.Equal(t, "a", stored.AccessToken)
	require.Equal(t, "r", stored.RefreshToken)
	require.Equal(t, "maria", stored.User.Username)
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, nil)
	}))

	require.NoError(t, f.client.Auth().Logout(context.Background()))
	require.Equal(t, session.Session{}, session.Load(f.store))
	require.Empty(t, f.notifier.all())
}

func TestWatchStreamsEvents(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" || r.Header.Get("Authorization") != "Bearer old" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		assert.NoError(t, conn.WriteJSON(event.New(event.TypeClientCreated, map[string]int64{"id": 1}, "1")))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	}))

	var received []Event
	err := f.client.Watch(context.Background(), func(e Event) {
		received = append(received, e)
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, event.TypeClientCreated, received[0].Type)
	require.JSONEq(t, `{"id":1}`, string(received[0].Payload))
}

func TestEventsURL(t *testing.T) {
	t.Parallel()

	c, err := New("https://shop.example.com/api/", session.NewMemoryStore(), Options{})
	require.NoError(t, err)
	require.Equal(t, "wss://shop.example.com/api/ws", c.eventsURL())

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	c, err = New(server.URL, session.NewMemoryStore(), Options{})
	require.NoError(t, err)
	require.Equal(t, "ws://"+server.Listener.Addr().String()+"/ws", c.eventsURL())
}
