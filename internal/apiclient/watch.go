package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/session"
)

// Event is a change notification streamed by the server.
type Event struct {
	ID        string          `json:"id"`
	Type      event.Type      `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
	ActorID   string          `json:"actor_id,omitempty"`
}

func (c *Client) eventsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws"
	default:
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws"
	}
}

// Watch streams server change events to handle until ctx is cancelled. A
// rejected handshake gets the same single refresh-and-retry as other calls.
func (c *Client) Watch(ctx context.Context, handle func(Event)) error {
	token := session.AccessToken(c.store)
	conn, status, err := c.dialEvents(ctx, token)
	if status == http.StatusUnauthorized {
		fresh, refreshErr := c.renewToken(ctx, token)
		if refreshErr != nil {
			c.expire()
			return fmt.Errorf("%w: %w", ErrSessionExpired, refreshErr)
		}
		conn, status, err = c.dialEvents(ctx, fresh)
		if status == http.StatusUnauthorized {
			c.expire()
			return fmt.Errorf("%w: websocket handshake rejected", ErrSessionExpired)
		}
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		handle(e)
	}
}

func (c *Client) dialEvents(ctx context.Context, token string) (*websocket.Conn, int, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.eventsURL(), header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if errors.Is(err, websocket.ErrBadHandshake) {
				return nil, resp.StatusCode, &HTTPError{Status: resp.StatusCode, Message: "websocket handshake rejected"}
			}
			return nil, resp.StatusCode, fmt.Errorf("dial events: %w", err)
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: dial events: %v", ErrNetwork, err)
	}
	return conn, http.StatusSwitchingProtocols, nil
}
