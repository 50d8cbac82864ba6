package channel

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is the joining side of the channel: a single WebSocket connection
// to a hub. Inbound frames are pumped to the handler on a dedicated
// goroutine, in arrival order.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Dial connects to a hub at the given ws:// URL and starts the read pump.
func Dial(url string, handler Handler) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn}
	go c.readLoop(handler)
	return c, nil
}

func (c *Client) readLoop(handler Handler) {
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			c.closeMu.Lock()
			closed := c.closed
			c.closeMu.Unlock()
			if !closed {
				log.Printf("[client] connection lost: %v", err)
			}
			return
		}
		if handler != nil {
			handler(frame)
		}
	}
}

func (c *Client) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) Close() error {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()
	return c.conn.Close()
}
