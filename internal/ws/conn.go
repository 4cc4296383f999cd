// Package ws adapts gorilla/websocket connections to the room.Conn
// contract: bounded, non-blocking sends via a write pump, and close
// frames that carry the room's application close codes.
package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// ErrSendBufferFull is returned when a peer stops draining its socket.
// The room treats it as a delivery failure and reaps the session.
var ErrSendBufferFull = errors.New("ws: send buffer full")

// ErrConnClosed is returned for sends after the connection shut down.
var ErrConnClosed = errors.New("ws: connection closed")

// Conn wraps one gorilla connection.  Send never blocks: messages are
// queued into a bounded channel drained by a single write pump, which
// also owns the write deadline.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewConn wraps the upgraded connection and starts its write pump.
func NewConn(wsConn *websocket.Conn) *Conn {
	c := &Conn{
		ws:   wsConn,
		send: make(chan []byte, sendBuffer),
	}
	go c.writePump()
	return c
}

// Send queues one message for delivery.  A full buffer or a closed
// connection is reported as an error rather than blocking the room.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close sends a close frame with the given code and reason, then tears
// the connection down.  Safe to call more than once.
func (c *Conn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(writeTimeout)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
	return c.ws.Close()
}

// ReadMessage blocks for the next text message from the peer.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *Conn) writePump() {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = c.Close(websocket.CloseAbnormalClosure, "write failed")
			// Drain so pending Sends that won the race do not leak.
			for range c.send {
			}
			return
		}
	}
}
