package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feirinha_ws_clients",
		Help: "Connected change feed clients.",
	})
	droppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feirinha_ws_dropped_messages_total",
		Help: "Change messages dropped because a client buffer was full.",
	})
)

// Message is a change notification broadcast to all clients.
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	ListID string `json:"list_id,omitempty"`
}

// NewMessage builds a Message from a store change; Type is entity_action.
func NewMessage(c model.Change) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", c.Entity, c.Action),
		Entity: c.Entity,
		Action: c.Action,
		ID:     c.ID,
		ListID: c.ListID,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	connectedClients.Inc()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		connectedClients.Dec()
	}
	h.mu.Unlock()
}

// Notify broadcasts a store change. It matches model.Notifier so it can be
// passed directly as a store's OnChange.
func (h *Hub) Notify(c model.Change) {
	h.Broadcast(NewMessage(c))
}

// Broadcast sends a message to all connected clients without blocking.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			droppedMessages.Inc()
			h.logger.Debug("client buffer full, message dropped", zap.String("type", msg.Type))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
