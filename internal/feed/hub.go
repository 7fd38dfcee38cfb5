package feed

import (
	"context"
	"sync"
)

// Hub fans changes out to in-process subscribers, one channel per connection.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Change]string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Change]string)}
}

// Subscribe registers a channel that receives the changes of userID.
func (h *Hub) Subscribe(userID string) chan Change {
	ch := make(chan Change, 32)
	h.mu.Lock()
	h.clients[ch] = userID
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

// Broadcast delivers c to every subscriber of its user. Slow subscribers miss
// the change rather than block the writer.
func (h *Hub) Broadcast(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, userID := range h.clients {
		if userID != c.UserID {
			continue
		}
		select {
		case ch <- c:
		default:
			// drop if slow
		}
	}
}

// Publish implements Publisher for single-instance deployments.
func (h *Hub) Publish(_ context.Context, c Change) error {
	h.Broadcast(c)
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
