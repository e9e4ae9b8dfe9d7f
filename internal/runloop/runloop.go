package runloop

import (
	"context"
	"sync"
	"time"
)

// Scheduler is the execution surface handed to components. Everything posted
// runs to completion on one goroutine, in post order, so the table state only
// ever has a single writer at a time.
type Scheduler interface {
	Post(fn func())
	PostDelayed(fn func(), delay time.Duration)
}

type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run drains the task queue until the context is cancelled or Stop is called.
// Handlers queued before a suspension keep their relative order.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// PostDelayed schedules fn onto the loop after delay. The timer fires on its
// own goroutine but the work itself still runs on the loop, so delayed tasks
// obey the same single-writer discipline as everything else.
func (l *Loop) PostDelayed(fn func(), delay time.Duration) {
	if delay <= 0 {
		l.Post(fn)
		return
	}
	time.AfterFunc(delay, func() {
		l.Post(fn)
	})
}
