package push

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WebsocketTransport to produkcyjny transport push oparty na gorilla/websocket
type WebsocketTransport struct {
	dialer *websocket.Dialer
}

// NewWebsocketTransport tworzy transport z domyślnym dialerem
func NewWebsocketTransport() *WebsocketTransport {
	return &WebsocketTransport{dialer: websocket.DefaultDialer}
}

// Connect nawiązuje połączenie websocket z usługą push
func (t *WebsocketTransport) Connect(ctx context.Context, url string) (Conn, error) {
	conn, _, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("błąd połączenia z usługą push: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn

	// gorilla dopuszcza jednego współbieżnego pisarza
	writeMu sync.Mutex
}

func (c *wsConn) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Receive() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
