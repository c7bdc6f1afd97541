package notifications

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"farmconnect/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Inbound frames are heartbeats only.
	maxInboundSize = 512
	sendBuffer     = 64
)

var (
	heartbeat    = []byte(`{"type":"ping"}`)
	heartbeatAck = []byte(`{"type":"pong"}`)
)

// Client is one notification socket. WritePump is the only writer to Conn;
// the hub talks to it through Send.
type Client struct {
	hub    *Hub
	Conn   *websocket.Conn // nil in tests
	Send   chan []byte
	UserID string
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{hub: hub, Conn: conn, UserID: userID, Send: make(chan []byte, sendBuffer)}
}

// ReadPump consumes inbound frames until the peer goes away, answering
// application heartbeats, then unregisters the client.
func (c *Client) ReadPump() {
	defer c.hub.UnregisterClient(c)

	c.Conn.SetReadLimit(maxInboundSize)
	extend := func() { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)) }
	extend()
	c.Conn.SetPongHandler(func(string) error { extend(); return nil })

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.LogError(context.Background(), c.UserID, err, "read")
			}
			return
		}
		extend()
		if bytes.Equal(bytes.TrimSpace(msg), heartbeat) {
			c.TrySend(heartbeatAck)
		}
	}
}

// WritePump delivers queued events and keeps the connection alive with
// pings. When the hub closes Send it says goodbye and closes the socket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.Conn.WriteMessage(kind, data)
	}

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "closing"))
				return
			}
			if err := write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues msg without blocking. A full buffer drops the message, and
// so does a client the hub has already closed.
func (c *Client) TrySend(msg []byte) (queued bool) {
	defer func() {
		if recover() != nil {
			middleware.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
			queued = false
		}
	}()

	select {
	case c.Send <- msg:
		return true
	default:
		middleware.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
		slog.Warn("notification buffer full, dropped event", slog.String("user_id", c.UserID))
		return false
	}
}
