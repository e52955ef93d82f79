// Package scope ties background work to the lifetime of an owner such as a
// controller. Closing the scope cancels its context and waits for every
// goroutine launched through it.
package scope

import (
	"context"
	"sync"
)

type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New derives a scope from parent. Cancelling parent cancels the scope's work
// but does not close it; Close must still be called.
func New(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go runs fn in a new goroutine bound to the scope. It reports false, and
// does not run fn, once the scope is closed.
func (s *Scope) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

// Child starts fn under its own cancel func, so a single job can be replaced
// without closing the scope. The returned cancel stops only that job.
func (s *Scope) Child(fn func(ctx context.Context)) (context.CancelFunc, bool) {
	ctx, cancel := context.WithCancel(s.ctx)
	ok := s.Go(func(context.Context) {
		defer cancel()
		fn(ctx)
	})
	if !ok {
		cancel()
	}
	return cancel, ok
}

// Wait blocks until every launched goroutine has returned, without closing.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding work and waits for it. It is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
