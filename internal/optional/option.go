// Package optional provides an explicit present/absent value.
package optional

// Option holds either a value or nothing. The zero Option is absent.
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// FromPtr is Some(*p) for non-nil p and None otherwise.
func FromPtr[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the held value, or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
