package scheduler

import (
	"sort"
	"time"
)

// Virtual is a deterministic Scheduler driven by the caller. Time only moves
// in Advance; spawned work runs synchronously during Flush so tests control
// exactly when asynchronous results land.
type Virtual struct {
	now     time.Time
	seq     int
	timers  []*virtualTimer
	posted  []func()
	spawned []func()
}

// NewVirtual creates a virtual scheduler starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time { return v.now }

func (v *Virtual) Post(fn func()) { v.posted = append(v.posted, fn) }

func (v *Virtual) Spawn(fn func()) { v.spawned = append(v.spawned, fn) }

func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &virtualTimer{due: v.now.Add(d), seq: v.seq, fn: fn}
	v.timers = append(v.timers, t)
	return t
}

// SpawnedCount reports work spawned but not yet run.
func (v *Virtual) SpawnedCount() int { return len(v.spawned) }

// Flush runs spawned work and posted callbacks until both queues are empty.
// Timers do not fire.
func (v *Virtual) Flush() {
	for len(v.spawned) > 0 || len(v.posted) > 0 {
		if len(v.spawned) > 0 {
			fn := v.spawned[0]
			v.spawned = v.spawned[1:]
			fn()
			continue
		}
		fn := v.posted[0]
		v.posted = v.posted[1:]
		fn()
	}
}

// FlushPosted runs posted callbacks only, leaving spawned work queued. It
// lets a test hold a fetch in flight while the loop keeps going.
func (v *Virtual) FlushPosted() {
	for len(v.posted) > 0 {
		fn := v.posted[0]
		v.posted = v.posted[1:]
		fn()
	}
}

// Advance moves time forward by d, firing due timers in order and flushing
// after each.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now.Add(d)
	v.Flush()
	for {
		t := v.nextDue(target)
		if t == nil {
			break
		}
		v.now = t.due
		t.fired = true
		t.fn()
		v.Flush()
	}
	v.now = target
}

// PendingTimers reports timers that have neither fired nor been stopped.
func (v *Virtual) PendingTimers() int {
	n := 0
	for _, t := range v.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (v *Virtual) nextDue(target time.Time) *virtualTimer {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	v.timers = live
	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].due.Equal(v.timers[j].due) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].due.Before(v.timers[j].due)
	})
	if len(v.timers) == 0 || v.timers[0].due.After(target) {
		return nil
	}
	return v.timers[0]
}

type virtualTimer struct {
	due     time.Time
	seq     int
	fn      func()
	fired   bool
	stopped bool
}

func (t *virtualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
