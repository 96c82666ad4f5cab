/**
 * @description
 * WebSocket client connection handling for the hub.
 * Upgrades HTTP requests, runs the read/write pumps, and processes
 * subscribe/unsubscribe frames from the client.
 *
 * @dependencies
 * - github.com/gorilla/websocket
 * - github.com/google/uuid
 */

package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	// Outbound buffer per client. When it fills, messages are dropped for that
	// client rather than blocking the hub.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks belong to the edge; the worker trusts its ingress
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  uuid.UUID
	symbols map[string]struct{}
}

// clientFrame is what clients send: subscribe/unsubscribe to a symbol
type clientFrame struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
}

// Handler returns the HTTP handler that upgrades connections into the hub.
// Clients may identify themselves with a user_id query parameter to receive
// personal pushes; authentication happens upstream of this worker.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed: %v", err)
			return
		}

		client := &Client{
			hub:     h,
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			symbols: make(map[string]struct{}),
		}
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				client.userID = id
			}
		}

		h.register(client)

		go client.writePump()
		go client.readPump()
	}
}

// trySend queues a payload without ever blocking the caller
func (c *Client) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
		// Client is too slow; drop the message to keep the hub responsive
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("ws: read error: %v", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "subscribe":
			if frame.Symbol != "" {
				c.hub.subscribe(c, frame.Symbol)
			}
		case "unsubscribe":
			if frame.Symbol != "" {
				c.hub.unsubscribe(c, frame.Symbol)
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
