/**
 * @description
 * WebSocket hub for live market clients.
 * Fans job-side events out to connected clients: price updates scoped to the
 * subscribers of a symbol, verification results to everyone, personal pushes
 * to one user's connections. Sends never block; a slow client loses messages
 * instead of stalling a job cycle.
 *
 * @dependencies
 * - github.com/gorilla/websocket (client pumps, see client.go)
 * - github.com/google/uuid
 */

package ws

import (
	"encoding/json"
	"sync"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/google/uuid"
)

// Event types on the wire
const (
	EventTypePriceUpdate        = "price_update"
	EventTypePredictionVerified = "prediction_verified"
	EventTypeNotification       = "notification"
)

// Event is the envelope every hub message is wrapped in
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	bySymbol   map[string]map[*Client]struct{}
	byUser     map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		bySymbol: make(map[string]map[*Client]struct{}),
		byUser:   make(map[uuid.UUID]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if c.userID != uuid.Nil {
		if h.byUser[c.userID] == nil {
			h.byUser[c.userID] = make(map[*Client]struct{})
		}
		h.byUser[c.userID][c] = struct{}{}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for symbol := range c.symbols {
		if subs := h.bySymbol[symbol]; subs != nil {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.bySymbol, symbol)
			}
		}
	}
	if c.userID != uuid.Nil {
		if conns := h.byUser[c.userID]; conns != nil {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.byUser, c.userID)
			}
		}
	}
	close(c.send)
}

func (h *Hub) subscribe(c *Client, symbol string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	c.symbols[symbol] = struct{}{}
	if h.bySymbol[symbol] == nil {
		h.bySymbol[symbol] = make(map[*Client]struct{})
	}
	h.bySymbol[symbol][c] = struct{}{}
}

func (h *Hub) unsubscribe(c *Client, symbol string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(c.symbols, symbol)
	if subs := h.bySymbol[symbol]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.bySymbol, symbol)
		}
	}
}

// BroadcastToSymbol sends an event to every client subscribed to the symbol
func (h *Hub) BroadcastToSymbol(symbol string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.bySymbol[symbol] {
		c.trySend(payload)
	}
}

// BroadcastAll sends an event to every connected client
func (h *Hub) BroadcastAll(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.trySend(payload)
	}
}

// SendToUser sends an event to every live connection of one user
func (h *Hub) SendToUser(userID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.byUser[userID] {
		c.trySend(payload)
	}
}

// ClientCount reports how many clients are connected
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
