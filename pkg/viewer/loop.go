package viewer

import (
	"context"
	"runtime"
	"sync"
)

// Loop is a queue of functions executed in order on one goroutine.
//
// Window toolkits require their state to be touched from a single thread.
// Either call Run on a dedicated goroutine, or call Drain from the toolkit's
// own update callback.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

// NewLoop returns an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Go queues f and returns immediately.
func (l *Loop) Go(f func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call queues f and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (l *Loop) Call(f func()) {
	done := make(chan struct{})
	l.Go(func() {
		defer close(done)
		f()
	})
	<-done
}

// Drain runs every queued function and reports how many ran.
// Functions queued while draining run on the next call.
func (l *Loop) Drain() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, f := range tasks {
		f()
	}
	return len(tasks)
}

// Pending reports the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Run executes queued functions until ctx is done. The calling goroutine is
// locked to its OS thread for the duration.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
