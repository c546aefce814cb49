//go:build linux || darwin

package zergmgr

import (
	"context"
	"testing"
	"time"
)

func TestWatchEmitsInitialState(t *testing.T) {
	z := testZergling(t)
	serveStats(t, z.StatsSocketPath(), statsIdleJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, cleanup, err := z.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cleanup() }()

	select {
	case ev := <-events:
		if ev.Err != nil {
			t.Fatal(ev.Err)
		}
		if ev.Stats == nil || ev.Stats.PID != 4242 {
			t.Errorf("Stats = %+v", ev.Stats)
		}
	case <-ctx.Done():
		t.Fatal("no initial event")
	}
}

func TestWatchMissingFolder(t *testing.T) {
	z := testZergling(t)
	z.folder = z.folder + "-absent"

	_, _, err := z.Watch(context.Background())
	if err == nil {
		t.Fatal("expected error for missing folder")
	}
}

func TestWaitImmediateConditions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("stopped", func(t *testing.T) {
		z := testZergling(t)
		st, err := z.Wait(ctx, Stopped)
		if err != nil {
			t.Fatal(err)
		}
		if st != nil {
			t.Errorf("Stats = %+v, want nil", st)
		}
	})

	t.Run("running", func(t *testing.T) {
		z := testZergling(t)
		serveStats(t, z.StatsSocketPath(), statsIdleJSON)
		st, err := z.Wait(ctx, Running)
		if err != nil {
			t.Fatal(err)
		}
		if st == nil || st.PID != 4242 {
			t.Errorf("Stats = %+v", st)
		}
	})

	t.Run("paused", func(t *testing.T) {
		z := testZergling(t)
		serveStats(t, z.StatsSocketPath(), statsPausedJSON)
		st, err := z.Wait(ctx, Paused)
		if err != nil {
			t.Fatal(err)
		}
		if st == nil || !st.Paused() {
			t.Errorf("Stats = %+v", st)
		}
	})
}

func TestWaitContextCancelled(t *testing.T) {
	z := testZergling(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := z.Wait(ctx, Running)
	if err != context.DeadlineExceeded {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}
