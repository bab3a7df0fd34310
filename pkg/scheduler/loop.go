package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/scout/pkg/logging"
)

// Loop is the wall-clock Scheduler. Callbacks queue without bound and run in
// order when the owner calls Run, or Drain from its own event loop.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped bool
	logger  logging.Logger
}

// NewLoop creates an idle loop.
func NewLoop(logger logging.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logging.OrNop(logger).With(logging.Component("scheduler")),
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

func (l *Loop) Spawn(fn func()) {
	go fn()
}

// Wake signals that Drain has work. Event loops that own the thread, such
// as a terminal UI, select on it instead of calling Run.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Drain runs every queued callback, including ones queued while draining.
// It returns the number of callbacks run.
func (l *Loop) Drain() int {
	ran := 0
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			l.safeRun(fn)
			ran++
		}
	}
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("callback panic recovered", logging.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

// Run drains callbacks until ctx is done, then stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.wake:
			l.Drain()
		}
	}
}

// Stop discards queued callbacks and ignores later posts.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.pending = nil
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.fired.Load() || t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return true
}
