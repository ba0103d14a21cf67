// internal/engine/loop.go
package engine

import (
	"context"
	"sync"
)

// Poster runs functions on the engine goroutine.
type Poster interface {
	Post(f func())
}

// Loop is a serial executor. Every state transition runs inside Run,
// one function at a time.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given queue depth.
func NewLoop(depth int) *Loop {
	if depth <= 0 {
		depth = 64
	}
	return &Loop{
		queue: make(chan func(), depth),
		done:  make(chan struct{}),
	}
}

// Post enqueues f. After Run has returned, f is dropped.
func (l *Loop) Post(f func()) {
	select {
	case <-l.done:
	case l.queue <- f:
	}
}

// Run executes posted functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.queue:
			f()
		}
	}
}

// Inline runs posted functions immediately on the caller's goroutine.
// Used with clock.Fake in tests.
type Inline struct{}

func (Inline) Post(f func()) { f() }
