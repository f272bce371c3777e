package realtime

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the message-level connection the session runs over. The
// production implementation wraps a websocket; tests substitute a scripted
// one.
type Transport interface {
	// ReadMessage blocks until the next inbound message or a terminal error.
	ReadMessage() ([]byte, error)
	// WriteJSON sends one client event.
	WriteJSON(v interface{}) error
	// Close tears the connection down. ReadMessage unblocks with an error.
	Close() error
}

// Dialer opens a Transport to the realtime endpoint.
type Dialer func(ctx context.Context) (Transport, error)

type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteJSON(v interface{}) error {
	return t.conn.WriteJSON(v)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// WebSocketDialer returns a Dialer for the hosted realtime endpoint.
// Authentication rides in the websocket subprotocol list, which is how the
// endpoint accepts browser-style clients that cannot set headers.
func WebSocketDialer(baseURL, apiKey, model string) Dialer {
	return func(ctx context.Context) (Transport, error) {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid realtime URL: %w", err)
		}
		q := u.Query()
		q.Set("model", model)
		u.RawQuery = q.Encode()

		dialer := websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			Subprotocols: []string{
				"realtime",
				"openai-insecure-api-key." + apiKey,
				"openai-beta.realtime-v1",
			},
		}
		conn, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, err
		}
		return &wsTransport{conn: conn}, nil
	}
}
