package live

import (
	"context"
	"sync"
)

// Launcher starts fn in the background and reports whether it did.
// (*scope.Scope).Go satisfies it.
type Launcher func(fn func(ctx context.Context)) bool

// Shared is a State fed by an upstream Stream that is started on first use
// and then kept running for as long as the launcher's owner lives.
//
// If the upstream fails, the cell is reset to its initial value, onErr is
// called and the upstream is not restarted.
type Shared[T any] struct {
	state    *State[T]
	initial  T
	upstream Stream[T]
	launch   Launcher
	onErr    func(error)

	once sync.Once
}

func NewShared[T any](upstream Stream[T], initial T, launch Launcher, onErr func(error)) *Shared[T] {
	return &Shared[T]{
		state:    NewState(initial),
		initial:  initial,
		upstream: upstream,
		launch:   launch,
		onErr:    onErr,
	}
}

// Start launches the upstream once. Later calls do nothing.
func (sh *Shared[T]) Start() {
	sh.once.Do(func() {
		sh.launch(func(ctx context.Context) {
			err := sh.upstream(ctx, sh.state.Set)
			if err == nil || ctx.Err() != nil {
				return
			}
			sh.state.Set(sh.initial)
			if sh.onErr != nil {
				sh.onErr(err)
			}
		})
	})
}

// Value is the latest value held; it does not start the upstream.
func (sh *Shared[T]) Value() T {
	return sh.state.Value()
}

// Watch starts the upstream if needed and then behaves like State.Watch.
func (sh *Shared[T]) Watch(ctx context.Context, fn func(T)) error {
	sh.Start()
	return sh.state.Watch(ctx, fn)
}

func (sh *Shared[T]) Stream() Stream[T] {
	return sh.Watch
}
