// Package live provides the observable building blocks used by the inventory
// client: cold restartable streams, broadcast state cells that replay their
// latest value, and lazily started shared state.
package live

import (
	"context"
	"errors"
)

// ErrNoValue is returned by First when a stream ends without emitting.
var ErrNoValue = errors.New("stream ended without a value")

// Stream is a cold, restartable sequence. Calling it starts a fresh
// subscription that calls emit for every value until ctx is cancelled, the
// source ends (nil) or the source fails (non-nil error). A cancelled stream
// returns ctx.Err().
type Stream[T any] func(ctx context.Context, emit func(T)) error

// Of emits values in order and ends.
func Of[T any](values ...T) Stream[T] {
	return func(ctx context.Context, emit func(T)) error {
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(v)
		}
		return nil
	}
}

// Fail is a stream that fails immediately with err.
func Fail[T any](err error) Stream[T] {
	return func(context.Context, func(T)) error {
		return err
	}
}

// Map transforms each value of s with f.
func Map[T, U any](s Stream[T], f func(T) U) Stream[U] {
	return func(ctx context.Context, emit func(U)) error {
		return s(ctx, func(v T) { emit(f(v)) })
	}
}

// First subscribes to s, returns its first value and cancels the subscription.
func First[T any](ctx context.Context, s Stream[T]) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		first T
		got   bool
	)
	err := s(ctx, func(v T) {
		if !got {
			first, got = v, true
			cancel()
		}
	})
	if got {
		return first, nil
	}
	if err == nil {
		err = ErrNoValue
	}
	return first, err
}
