package scheduler

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtualTimersFireInOrder(t *testing.T) {
	v := NewVirtual(epoch)
	var got []string
	v.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	v.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	v.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	v.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}
	v.Advance(250 * time.Millisecond)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v", got)
	}
	if !v.Now().Equal(epoch.Add(349 * time.Millisecond)) {
		t.Errorf("Now() = %v", v.Now())
	}
}

func TestVirtualTimerStop(t *testing.T) {
	v := NewVirtual(epoch)
	fired := false
	timer := v.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	v.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if v.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d", v.PendingTimers())
	}
}

func TestVirtualNestedTimers(t *testing.T) {
	v := NewVirtual(epoch)
	var at []time.Duration
	v.AfterFunc(500*time.Millisecond, func() {
		at = append(at, v.Now().Sub(epoch))
		v.AfterFunc(300*time.Millisecond, func() {
			at = append(at, v.Now().Sub(epoch))
		})
	})
	v.Advance(time.Second)
	want := []time.Duration{500 * time.Millisecond, 800 * time.Millisecond}
	if !reflect.DeepEqual(at, want) {
		t.Errorf("fired at %v, want %v", at, want)
	}
}

func TestAwaitDeliversOnFlush(t *testing.T) {
	v := NewVirtual(epoch)
	var result int
	var resultErr error
	Await(v, func() (int, error) { return 42, errors.New("partial") }, func(n int, err error) {
		result, resultErr = n, err
	})

	if v.SpawnedCount() != 1 {
		t.Fatalf("SpawnedCount() = %d", v.SpawnedCount())
	}
	v.FlushPosted()
	if result != 0 {
		t.Fatal("FlushPosted must not run spawned work")
	}
	v.Flush()
	if result != 42 || resultErr == nil {
		t.Errorf("got %d, %v", result, resultErr)
	}
}

func TestEvery(t *testing.T) {
	v := NewVirtual(epoch)
	count := 0
	ticker := Every(v, 16*time.Millisecond, func() { count++ })

	v.Advance(160 * time.Millisecond)
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
	ticker.Stop()
	v.Advance(time.Second)
	if count != 10 {
		t.Errorf("ticker kept running after Stop: %d", count)
	}
}

func TestGroupClose(t *testing.T) {
	v := NewVirtual(epoch)
	g := NewGroup(v)
	var fired []int
	g.After(100*time.Millisecond, func() { fired = append(fired, 1) })
	g.After(500*time.Millisecond, func() { fired = append(fired, 2) })

	v.Advance(200 * time.Millisecond)
	if g.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", g.Pending())
	}
	g.Close()
	g.After(10*time.Millisecond, func() { fired = append(fired, 3) })
	v.Advance(time.Second)

	if !reflect.DeepEqual(fired, []int{1}) {
		t.Errorf("fired = %v", fired)
	}
	if !g.Closed() || g.Pending() != 0 {
		t.Errorf("closed=%v pending=%d", g.Closed(), g.Pending())
	}
}
