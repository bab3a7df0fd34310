// Package scheduler provides the cooperative, single-threaded execution model
// of the explorer: ticks, input handlers, timer callbacks and fetch
// completions all run one at a time on a loop, so map state needs no locks.
package scheduler

import (
	"errors"
	"time"
)

// ErrStopped is returned by Run once the loop has been shut down.
var ErrStopped = errors.New("scheduler: loop stopped")

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped a timer that had neither fired nor been stopped.
	Stop() bool
}

// Scheduler runs callbacks on a single logical thread.
type Scheduler interface {
	Now() time.Time
	// Post queues fn to run on the loop.
	Post(fn func())
	// AfterFunc runs fn on the loop after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// Spawn runs fn off the loop. fn must hand results back through Post.
	Spawn(fn func())
}

// Await runs work off the loop and delivers its result on the loop.
func Await[T any](s Scheduler, work func() (T, error), done func(T, error)) {
	s.Spawn(func() {
		v, err := work()
		s.Post(func() { done(v, err) })
	})
}

// Every runs fn on the loop every interval until the returned timer is
// stopped.
func Every(s Scheduler, interval time.Duration, fn func()) Timer {
	r := &repeating{s: s, interval: interval, fn: fn}
	r.arm()
	return r
}

type repeating struct {
	s        Scheduler
	interval time.Duration
	fn       func()
	current  Timer
	stopped  bool
}

func (r *repeating) arm() {
	r.current = r.s.AfterFunc(r.interval, func() {
		if r.stopped {
			return
		}
		r.fn()
		if !r.stopped {
			r.arm()
		}
	})
}

// Stop must be called on the loop.
func (r *repeating) Stop() bool {
	if r.stopped {
		return false
	}
	r.stopped = true
	r.current.Stop()
	return true
}

// Group owns a set of timers so they can be cancelled together when the
// work they belong to is superseded. Use it from the loop only.
type Group struct {
	s      Scheduler
	timers []Timer
	closed bool
}

// NewGroup creates an empty timer group on s.
func NewGroup(s Scheduler) *Group {
	return &Group{s: s}
}

// After schedules fn like AfterFunc unless the group is closed.
func (g *Group) After(d time.Duration, fn func()) {
	if g.closed {
		return
	}
	var t Timer
	t = g.s.AfterFunc(d, func() {
		g.forget(t)
		if !g.closed {
			fn()
		}
	})
	g.timers = append(g.timers, t)
}

func (g *Group) forget(t Timer) {
	for i, x := range g.timers {
		if x == t {
			g.timers = append(g.timers[:i], g.timers[i+1:]...)
			return
		}
	}
}

// Pending reports how many timers have neither fired nor been cancelled.
func (g *Group) Pending() int {
	return len(g.timers)
}

// Close stops every pending timer; later After calls are ignored.
func (g *Group) Close() {
	g.closed = true
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}

// Closed reports whether Close has been called.
func (g *Group) Closed() bool {
	return g.closed
}
