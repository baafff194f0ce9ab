package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// go test -v --run TestSchedulerRunsImmediatelyAndOnTicks
func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	var runs atomic.Int64
	s := &Scheduler{
		Interval: 10 * time.Millisecond,
		Download: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
		Log: zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.After(time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// go test -v --run TestSchedulerStopsOnCancel
func TestSchedulerStopsOnCancel(t *testing.T) {
	var runs atomic.Int64
	s := &Scheduler{
		Interval: 5 * time.Millisecond,
		Download: func(ctx context.Context) error {
			runs.Add(1)
			return errors.New("listing endpoint down") // failures must not stop the loop
		},
		Log: zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	time.Sleep(30 * time.Millisecond)
	if runs.Load() < 2 {
		t.Fatalf("failed refreshes should keep retrying, got %d runs", runs.Load())
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != settled {
		t.Fatal("scheduler kept running after cancel")
	}
}
