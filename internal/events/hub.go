// Package events fans out engine events to SSE subscribers.
package events

import (
	"encoding/json"
	"sync"
)

// Event is one message pushed to subscribers.
type Event struct {
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Company  string `json:"company,omitempty"`
	Title    string `json:"title,omitempty"`
	SourceID string `json:"sourceId,omitempty"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, 10)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

// Publish serializes the event and delivers it to every subscriber. Slow
// subscribers drop messages rather than block the publisher.
func (h *Hub) Publish(evt Event) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	msg := string(b)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// drop if slow
		}
	}
}
