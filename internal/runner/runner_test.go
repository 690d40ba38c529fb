package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunToCompletion(t *testing.T) {
	r := New()

	var progress atomic.Int32
	r.OnProgress(func(p Progress) { progress.Add(1) })

	err := r.Start(context.Background(), func(ctx context.Context, report func(Progress)) error {
		for i := 0; i < 3; i++ {
			report(Progress{Current: i + 1, Total: 3})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := r.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if r.State() != StateDone {
		t.Errorf("state = %v", r.State())
	}
	if progress.Load() != 3 {
		t.Errorf("progress callbacks = %d", progress.Load())
	}
}

func TestDoubleStartRefused(t *testing.T) {
	r := New()
	release := make(chan struct{})

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		<-release
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		return nil
	}); err == nil {
		t.Error("second Start should be refused while running")
	}

	close(release)
	r.Wait()

	// A finished runner accepts a new task.
	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		return nil
	}); err != nil {
		t.Errorf("restart after completion failed: %v", err)
	}
	r.Wait()
}

func TestCancel(t *testing.T) {
	r := New()
	started := make(chan struct{})

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}

	<-started
	r.Cancel()

	err := r.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait returned %v", err)
	}
	if r.State() != StateCancelled {
		t.Errorf("state = %v", r.State())
	}
}

func TestFailure(t *testing.T) {
	r := New()
	boom := errors.New("boom")

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		return boom
	}); err != nil {
		t.Fatal(err)
	}

	if err := r.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait returned %v", err)
	}
	if r.State() != StateFailed {
		t.Errorf("state = %v", r.State())
	}
}

func TestTaskContextReleasedOnCompletion(t *testing.T) {
	r := New()
	var taskCtx context.Context

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		taskCtx = ctx
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}

	select {
	case <-taskCtx.Done():
	case <-time.After(2 * time.Second):
		t.Error("task context still alive after the run finished")
	}
	if r.State() != StateDone {
		t.Errorf("state = %v", r.State())
	}
}

func TestStateCallback(t *testing.T) {
	r := New()
	states := make(chan State, 4)
	r.OnStateChange(func(s State) { states <- s })

	if err := r.Start(context.Background(), func(ctx context.Context, _ func(Progress)) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	seen := map[State]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case s := <-states:
			seen[s] = true
		case <-timeout:
			t.Fatalf("state callbacks seen: %v", seen)
		}
	}
	if !seen[StateRunning] || !seen[StateDone] {
		t.Errorf("states = %v", seen)
	}
}
