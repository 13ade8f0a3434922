package viewer

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBuildPanicked is the error kept by a Lazy whose build panicked.
var ErrBuildPanicked = errors.New("viewer: lazy build panicked")

// Lazy is a value built on first use, at most once.
//
// The first result is kept, including an error: a failed build is not
// retried. A build that panics leaves ErrBuildPanicked behind; the panic
// itself propagates to the first caller.
type Lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	val   T
	err   error
	done  atomic.Bool
}

// NewLazy returns a cell that calls build on the first Get.
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get builds the value if needed and returns it.
// Concurrent callers block until the single build finishes.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		defer l.done.Store(true)
		l.err = ErrBuildPanicked
		l.val, l.err = l.build()
		l.build = nil
	})
	return l.val, l.err
}

// Built reports whether the value has been built.
func (l *Lazy[T]) Built() bool {
	return l.done.Load()
}
