package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/apiclient"
	"go-repair-shop/internal/model"
)

type fakeShop struct {
	*httptest.Server
	logouts int
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newFakeShop(t *testing.T) *fakeShop {
	t.Helper()
	shop := &fakeShop{}

	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer access-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": "UNAUTHORIZED", "message": "invalid token"}})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": "UNAUTHORIZED", "message": "invalid credentials"}})
			return
		}
		writeJSON(w, http.StatusOK, model.TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			User:         &model.AuthUser{ID: 1, Username: req.Username, Role: model.RoleEmployee},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		shop.logouts++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /clients/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		email := "ann@example.com"
		writeJSON(w, http.StatusOK, []model.Client{
			{ID: 1, ClientInput: model.ClientInput{Name: "Ann Lee", PhoneNumber: "555-0101", Email: &email}},
			{ID: 2, ClientInput: model.ClientInput{Name: "Bob Ray", PhoneNumber: "555-0102"}},
		})
	}))

	vehicles := []model.Vehicle{
		{ID: 10, VehicleInput: model.VehicleInput{OwnerID: 1, VehicleType: "car", BrandModel: "Corolla", PlateNumber: "ABC1", Kilometers: 52000}},
		{ID: 11, VehicleInput: model.VehicleInput{OwnerID: 2, VehicleType: "van", BrandModel: "Transit", PlateNumber: "XYZ9", Kilometers: 8000}},
	}
	mux.HandleFunc("GET /vehicles/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, vehicles)
	}))
	mux.HandleFunc("GET /vehicles/{id}", authorized(func(w http.ResponseWriter, r *http.Request) {
		for _, v := range vehicles {
			if model.FormatID(v.ID) == r.PathValue("id") {
				writeJSON(w, http.StatusOK, v)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": "NOT_FOUND", "message": "Vehicle not found"}})
	}))
	mux.HandleFunc("GET /work-orders/", authorized(func(w http.ResponseWriter, _ *http.Request) {
		order := func(id int64, clientID int64, vehicleID int64, month time.Month, workers string) model.WorkOrder {
			return model.WorkOrder{ID: id, WorkOrderInput: model.WorkOrderInput{
				ClientID:      clientID,
				VehicleID:     vehicleID,
				EntryDate:     model.NewDate(2024, month, 1),
				WorkStatus:    model.WorkStatusPending,
				PaymentStatus: model.PaymentNotPaid,
				Workers:       workers,
			}}
		}
		writeJSON(w, http.StatusOK, []model.WorkOrder{
			order(100, 1, 10, time.January, "Luis"),
			order(101, 2, 11, time.February, "Ana"),
			order(102, 1, 10, time.March, "Marta"),
		})
	}))

	shop.Server = httptest.NewServer(mux)
	t.Cleanup(shop.Close)
	return shop
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, dir string, apiURL string, args ...string) result {
	t.Helper()
	t.Setenv("SHOPCTL_API_URL", "")
	t.Setenv("SHOPCTL_PAGE_SIZE", "")
	t.Setenv("SHOPCTL_SESSION_FILE", "")
	t.Setenv("SHOPCTL_LOG_FILE", "")

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", dir, "--api-url", apiURL}, args...))

	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestCommandsRequireLogin(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	res := run(t, dir, shop.URL, "clients", "list")
	require.ErrorIs(t, res.err, model.ErrUnauthorized)
	require.Contains(t, res.err.Error(), "shopctl login")
}

func TestLoginListAndLogout(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	res := run(t, dir, shop.URL, "login", "-u", "maria", "-p", "wrong")
	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "invalid credentials")

	res = run(t, dir, shop.URL, "login", "-u", "maria", "-p", "secret")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Signed in as maria")
	require.FileExists(t, filepath.Join(dir, "session.json"))

	res = run(t, dir, shop.URL, "whoami")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "maria")

	res = run(t, dir, shop.URL, "clients", "list", "--search", "bob")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Bob Ray")
	require.NotContains(t, res.stdout, "Ann Lee")
	require.Contains(t, res.stdout, "page 1 of 1, 1 matching")

	res = run(t, dir, shop.URL, "clients", "list", "--order", "desc")
	require.NoError(t, res.err)
	require.Less(t, bytes.Index([]byte(res.stdout), []byte("Bob Ray")), bytes.Index([]byte(res.stdout), []byte("Ann Lee")))

	res = run(t, dir, shop.URL, "users", "list")
	require.ErrorIs(t, res.err, model.ErrForbidden)

	res = run(t, dir, shop.URL, "logout")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Signed out.")
	require.Equal(t, 1, shop.logouts)

	res = run(t, dir, shop.URL, "clients", "list")
	require.ErrorIs(t, res.err, model.ErrUnauthorized)
}

func TestCreateValidationStopsBeforeRequest(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	require.NoError(t, run(t, dir, shop.URL, "login", "-u", "maria", "-p", "secret").err)

	res := run(t, dir, shop.URL, "clients", "create", "--name", "Cara")
	require.Error(t, res.err)

	described := describeError(res.err)
	require.Contains(t, described, "invalid input")
	require.Contains(t, described, "phone_number")
}

func TestDeleteNeedsConfirmationWithoutTerminal(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	require.NoError(t, run(t, dir, shop.URL, "login", "-u", "maria", "-p", "secret").err)

	res := run(t, dir, shop.URL, "work-orders", "delete", "7")
	require.ErrorContains(t, res.err, "--yes")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "http://shop.test:8000", "config", "init")
	require.NoError(t, res.err)
	raw, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "api_url: http://shop.test:8000")

	res = run(t, dir, "http://shop.test:8000", "config", "init")
	require.ErrorContains(t, res.err, "--force")

	res = run(t, dir, "http://other.test", "config", "show")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "api_url: http://other.test")
	require.Contains(t, res.stdout, "page_size: 10")
}

func TestLabel(t *testing.T) {
	require.Equal(t, "Partially Paid", label("partially_paid"))
	require.Equal(t, "In Progress", label("in_progress"))
	require.Equal(t, "Admin", label("admin"))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	_, err = parseID("0")
	require.Error(t, err)
	_, err = parseID("abc")
	require.Error(t, err)
}

func TestVehicleDetailsShowOwnerAndHistory(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	require.NoError(t, run(t, dir, shop.URL, "login", "-u", "maria", "-p", "secret").err)

	res := run(t, dir, shop.URL, "vehicles", "get", "10")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Corolla")
	require.Contains(t, res.stdout, "Ann Lee (#1)")
	require.Contains(t, res.stdout, "555-0101")
	require.Contains(t, res.stdout, "Luis")
	require.Contains(t, res.stdout, "Marta")
	require.NotContains(t, res.stdout, "Ana")
	require.Contains(t, res.stdout, "page 1 of 1, 2 matching")

	res = run(t, dir, shop.URL, "--page-size", "1", "vehicles", "get", "10", "--page", "2")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Marta")
	require.NotContains(t, res.stdout, "Luis")
	require.Contains(t, res.stdout, "page 2 of 2, 2 matching")

	res = run(t, dir, shop.URL, "vehicles", "get", "10", "--search", "102")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "page 1 of 1, 1 matching")

	res = run(t, dir, shop.URL, "vehicles", "get", "99")
	require.True(t, apiclient.IsNotFound(res.err))
}

func TestWorkOrdersFilterByVehicle(t *testing.T) {
	shop := newFakeShop(t)
	dir := t.TempDir()

	require.NoError(t, run(t, dir, shop.URL, "login", "-u", "maria", "-p", "secret").err)

	res := run(t, dir, shop.URL, "work-orders", "list", "--vehicle", "11")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Ana")
	require.Contains(t, res.stdout, "Bob Ray")
	require.NotContains(t, res.stdout, "Luis")
	require.Contains(t, res.stdout, "page 1 of 1, 1 matching")
}
