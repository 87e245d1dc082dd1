package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"go-repair-shop/internal/event"
)

// Hub fans bus events out to every connected websocket client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	bus        event.Bus
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		bus:        bus,
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			slog.Debug("websocket client connected", "user_id", client.userID, "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Debug("websocket client disconnected", "user_id", client.userID, "clients", len(h.clients))
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "type", e.Type, "error", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// a client that cannot keep up is dropped
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}
