// Package uiloop provides a single-goroutine dispatch loop.
// All closures posted to a Loop run sequentially on one goroutine,
// giving callers a place to mutate UI state without locks.
package uiloop

import (
	"sync"
)

// Loop serializes posted closures onto a single goroutine.
// Mutable
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

// New creates a Loop and starts its goroutine.
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post enqueues fn for execution on the loop goroutine.
// It never blocks. Posting after Stop is a no-op.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostWait enqueues fn and blocks until it has run.
// Calling PostWait from the loop goroutine itself would deadlock.
func (l *Loop) PostWait(fn func()) {
	ch := make(chan struct{})
	l.Post(func() {
		fn()
		close(ch)
	})

	select {
	case <-ch:
	case <-l.done:
	}
}

// Stop drains the pending queue and terminates the loop goroutine.
// It blocks until the goroutine has exited.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

// Dispatch implements the dispatcher contract used by the view adapter.
func (l *Loop) Dispatch(fn func()) {
	l.Post(fn)
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		stopped := l.stopped
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if stopped {
			// One final drain so Stop never leaves posted work behind.
			l.mu.Lock()
			batch = l.queue
			l.queue = nil
			l.mu.Unlock()
			for _, fn := range batch {
				fn()
			}
			return
		}

		if len(batch) == 0 {
			<-l.wake
		}
	}
}
