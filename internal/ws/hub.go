package ws

import (
	"encoding/json"
	"sync"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_clients",
		Help: "Websocket clients subscribed to the task feed",
	})
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_events_published_total",
			Help: "Task change events fanned out to the websocket feed",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(EventsPublished)
}

// Hub fans task events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	ConnectedClients.Inc()
}

// Unregister removes c and stops its writer. Calling it twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		ConnectedClients.Dec()
		c.stop()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements service.EventPublisher. It never blocks: a client whose
// queue is full is disconnected.
func (h *Hub) Publish(evt domain.TaskEvent) {
	msg, err := json.Marshal(evt)
	if err != nil {
		logger.Error("encode task event", "error", err, "type", evt.Type)
		return
	}
	EventsPublished.WithLabelValues(evt.Type).Inc()

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("dropping slow feed client", "client_id", c.ID)
		h.Unregister(c)
	}
}

// Close disconnects every client, used on shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
}
