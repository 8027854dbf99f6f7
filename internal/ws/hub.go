package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open websocket connections",
	})
	droppedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_messages_total",
		Help: "Outbound messages dropped because a client buffer was full",
	})
)

func init() {
	prometheus.MustRegister(connections, droppedMessages)
}

// Hub tracks live connections. Room state lives in the battle engine; the
// hub only knows which sockets are open so they can be counted and closed.
type Hub struct {
	battles Battles

	mu      sync.RWMutex
	clients map[string]*Client
	byUser  map[int64]int
}

func NewHub(battles Battles) *Hub {
	return &Hub{
		battles: battles,
		clients: make(map[string]*Client),
		byUser:  make(map[int64]int),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	h.byUser[c.UserID]++
	connections.Set(float64(len(h.clients)))
	c.log.Debug("client connected", "open", len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	if h.byUser[c.UserID]--; h.byUser[c.UserID] <= 0 {
		delete(h.byUser, c.UserID)
	}
	connections.Set(float64(len(h.clients)))
	c.log.Debug("client disconnected", "open", len(h.clients))
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnections returns how many sockets userID has open.
func (h *Hub) UserConnections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byUser[userID]
}

// CloseAll asks every client to close, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Close()
	}
}
