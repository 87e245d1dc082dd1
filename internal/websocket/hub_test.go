package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"go-repair-shop/internal/event"
)

func TestHubBroadcastsBusEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := event.NewBus()
	hub := NewHub(bus)
	go hub.Run(ctx)

	server := httptest.NewServer(NewHandler(ctx, hub, []string{"*"}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration races the handshake, so keep publishing until one arrives
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bus.Publish(event.New(event.TypeWorkOrderCreated, map[string]int{"id": 7}, "1"))
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, event.TypeWorkOrderCreated, got.Type)
	require.Equal(t, "1", got.ActorID)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(event.NewBus())
	go hub.Run(ctx)

	server := httptest.NewServer(NewHandler(ctx, hub, []string{"*"}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)
	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
