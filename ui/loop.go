// Package ui contains the terminal frontend: a serial event loop standing in
// for a GUI toolkit's interactive thread, and the shell that drives the
// services from user commands.
package ui

import "sync"

// Loop executes closures one at a time, in submission order, on a single
// goroutine. It implements remote.Dispatcher: every remote operation's result
// lands here, never on the goroutine that issued the request.
type Loop struct {
	fns      chan func()
	quit     chan struct{}
	stopOnce sync.Once
}

// NewLoop starts the loop goroutine immediately.
func NewLoop() *Loop {
	l := &Loop{
		fns:  make(chan func(), 64),
		quit: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.fns:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Invoke queues fn for execution on the loop goroutine. After Stop, calls are
// dropped silently; a result arriving for a torn-down frontend has nowhere to
// go.
func (l *Loop) Invoke(fn func()) {
	select {
	case <-l.quit:
	case l.fns <- fn:
	}
}

// Stop shuts the loop down. Queued closures that have not run yet are
// discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}
