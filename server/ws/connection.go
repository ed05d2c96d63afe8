// Package ws is the websocket transport named as an external collaborator
// in spec.md §1: it moves already-serialized JSON frames between the
// façade and connected clients and holds no topic/change/transition logic
// of its own.
package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// Connection wraps one accepted websocket and fans inbound frames out to
// onMessage while draining an outbound send channel on its own write pump.
type Connection struct {
	ID  string
	Hub *Hub

	conn      *websocket.Conn
	send      chan []byte
	onMessage func(data []byte)
	onClose   func()

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	log *slog.Logger
}

func NewConnection(hub *Hub, conn *websocket.Conn, id string, log *slog.Logger, onMessage func([]byte), onClose func()) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ID:        id,
		Hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		onMessage: onMessage,
		onClose:   onClose,
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
	}
}

// Start spawns the read and write pumps. It returns immediately.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Send enqueues msg for delivery without blocking; it drops the frame and
// logs if the client's send buffer is full, per §5's "discards any pending
// send buffer" on a slow/closed client, and drops it silently once Close
// has run.
func (c *Connection) Send(msg []byte) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warn("dropping frame to slow client", "client", c.ID)
	}
}

// Outbox exposes the send channel for tests and introspection; production
// callers should use Send instead of reading from it directly.
func (c *Connection) Outbox() <-chan []byte { return c.send }

// Close tears the connection down exactly once.
func (c *Connection) Close() {
	c.once.Do(func() {
		c.cancel()
		close(c.send)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	})
}

func (c *Connection) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.onMessage(data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
