package viewer

import (
	"context"
	"sync"
)

type outcome[T any] struct {
	value T
	err   error
}

// settler turns a success/error callback pair into a single result.
// Only the first of resolve or reject has any effect.
type settler[T any] struct {
	once sync.Once
	ch   chan outcome[T]
}

func newSettler[T any]() *settler[T] {
	return &settler[T]{ch: make(chan outcome[T], 1)}
}

func (s *settler[T]) resolve(v T) {
	s.once.Do(func() { s.ch <- outcome[T]{value: v} })
}

func (s *settler[T]) reject(err error) {
	s.once.Do(func() { s.ch <- outcome[T]{err: err} })
}

// wait blocks until the result arrives or ctx is done.
func (s *settler[T]) wait(ctx context.Context) (T, error) {
	select {
	case r := <-s.ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// poll returns the result if it has already arrived.
func (s *settler[T]) poll() (T, bool, error) {
	select {
	case r := <-s.ch:
		return r.value, true, r.err
	default:
		var zero T
		return zero, false, nil
	}
}
