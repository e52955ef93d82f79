// Package notify tells live product streams that the store changed.
//
// Hub is the in-process fan-out; RedisNotifier extends it across server
// instances over Redis pub/sub.
package notify

import (
	"context"
	"sync"
)

// Notifier is what mutating code calls after a successful store change.
type Notifier interface {
	Notify(ctx context.Context)
}

// Hub delivers change signals to subscribers. Signals coalesce: a
// subscriber that has not drained its channel sees one pending signal no
// matter how many changes happened meanwhile.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Subscribe returns the signal channel and a cancel func that unregisters
// it. The channel is never closed.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Notify(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
