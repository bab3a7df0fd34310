package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dd0wney/scout/pkg/logging"
)

func TestLoopRunsPostedInOrder(t *testing.T) {
	l := NewLoop(logging.NewNopLogger())
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if n := l.Drain(); n != 5 {
		t.Fatalf("Drain() = %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken: %v", got)
		}
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	l := NewLoop(nil)
	ran := false
	l.Post(func() { panic("boom") })
	l.Post(func() { ran = true })
	l.Drain()
	if !ran {
		t.Error("callback after a panic did not run")
	}
}

func TestLoopAfterFuncAndStop(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fired := make(chan struct{})
	cancelled := l.AfterFunc(10*time.Millisecond, func() { t.Error("stopped timer fired") })
	l.Post(func() {
		if !cancelled.Stop() {
			t.Error("Stop should report true")
		}
	})
	l.AfterFunc(30*time.Millisecond, func() { close(fired) })

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case <-fired:
	case <-ctx.Done():
		t.Fatal("timer never fired")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v", err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Run after stop = %v", err)
	}
}
