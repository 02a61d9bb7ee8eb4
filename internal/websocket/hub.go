// internal/websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"tishe-service/internal/cache"
	"tishe-service/internal/domain/catalog"
	"tishe-service/internal/session"

	catalogsvc "tishe-service/internal/service/catalog"

	"go.uber.org/zap"
)

// Event is one state transition pushed to connected views.
type Event struct {
	Type string `json:"type"`          // "session" or "collection"
	Key  string `json:"key,omitempty"` // collection key for collection events
	Data any    `json:"data"`
}

type collectionData struct {
	Status    cache.Status `json:"status"`
	Count     int          `json:"count"`
	Error     string       `json:"error,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
}

// Hub fans session and collection transitions out to every connected view.
// Views don't poll: they mount, receive the current session state, and
// re-render on pushes.
type Hub struct {
	sessions *session.Manager
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*Client]bool
}

func NewHub(sessions *session.Manager, catalogSvc *catalogsvc.Service, logger *zap.Logger) *Hub {
	h := &Hub{
		sessions: sessions,
		logger:   logger,
		clients:  make(map[*Client]bool),
	}

	sessions.Subscribe(func(snap session.Snapshot) {
		h.Broadcast(Event{Type: "session", Data: snap.View()})
	})
	catalogSvc.Categories().Subscribe(func(snap cache.Snapshot[catalog.Category]) {
		h.Broadcast(collectionEvent(catalogSvc.Categories().Key(), snap.Status, len(snap.Items), snap.Err, snap.Retryable))
	})
	catalogSvc.Products().Subscribe(func(snap cache.Snapshot[catalog.Product]) {
		h.Broadcast(collectionEvent(catalogSvc.Products().Key(), snap.Status, len(snap.Items), snap.Err, snap.Retryable))
	})

	return h
}

func collectionEvent(key string, status cache.Status, count int, err error, retryable bool) Event {
	data := collectionData{Status: status, Count: count, Retryable: retryable}
	if err != nil {
		data.Error = err.Error()
	}
	return Event{Type: "collection", Key: key, Data: data}
}

// Register attaches a client and primes it with the current session state.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	c.push(Event{Type: "session", Data: h.sessions.Snapshot().View()})
}

// Unregister detaches a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast pushes one event to every connected client. Clients that cannot
// keep up are dropped rather than allowed to stall the transition fan-out.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	var slow []*Client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if len(slow) > 0 {
		h.logger.Warn("dropped slow websocket clients", zap.Int("count", len(slow)))
	}
}
