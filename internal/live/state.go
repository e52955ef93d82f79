package live

import (
	"context"
	"sync"
)

// node is one link of the value chain; ready is closed once next is set.
type node[T any] struct {
	value T
	next  *node[T]
	ready chan struct{}
}

func newNode[T any](v T) *node[T] {
	return &node[T]{value: v, ready: make(chan struct{})}
}

// State is a broadcast cell. It always holds a value; a new watcher first
// receives the current value and then every later one, in order. Slow
// watchers never block Set.
type State[T any] struct {
	mu   sync.Mutex
	head *node[T]
}

func NewState[T any](initial T) *State[T] {
	return &State[T]{head: newNode(initial)}
}

func (s *State[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head.value
}

// Set publishes v to every watcher.
func (s *State[T]) Set(v T) {
	n := newNode(v)

	s.mu.Lock()
	old := s.head
	old.next = n
	s.head = n
	s.mu.Unlock()

	close(old.ready)
}

// Watch calls fn with the current value and then with every update until ctx
// is done. It always returns ctx.Err().
func (s *State[T]) Watch(ctx context.Context, fn func(T)) error {
	s.mu.Lock()
	n := s.head
	s.mu.Unlock()

	fn(n.value)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.ready:
			n = n.next
			fn(n.value)
		}
	}
}

// Stream exposes the cell as a Stream.
func (s *State[T]) Stream() Stream[T] {
	return s.Watch
}
