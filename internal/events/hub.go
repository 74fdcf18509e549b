package events

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 16

// Hub fans encoded events out to subscribers. A subscriber that falls behind
// loses events instead of stalling the pass that publishes them.
type Hub struct {
	buf     int
	dropped atomic.Int64

	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub { return NewHubSize(defaultBuffer) }

func NewHubSize(buf int) *Hub {
	if buf < 1 {
		buf = 1
	}
	return &Hub{buf: buf, clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, h.buf)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers reports how many streams are attached.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts events not delivered to slow subscribers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
