// =============================================================================
// ExcelTools - Background Runner
// =============================================================================
//
// This module runs one long operation at a time in the background, with
// progress and status callbacks and cooperative cancellation. Feature
// engines accept a context and check it between units of work; the runner
// owns that context and exposes Cancel to abort a run.
//
// =============================================================================

package runner

import (
	"context"
	"fmt"
	"sync"
)

// State describes the lifecycle of a runner.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Progress reports how far a run has come.
type Progress struct {
	Current int
	Total   int
	Message string
}

// Task is the unit of work a runner executes. The reporter may be called
// from the task to publish progress.
type Task func(ctx context.Context, report func(Progress)) error

// Runner executes one task at a time.
type Runner struct {
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	onProgress func(Progress)
	onState    func(State)
}

// New creates an idle runner.
func New() *Runner {
	return &Runner{state: StateIdle}
}

// OnProgress registers the progress callback. Must be set before Start.
func (r *Runner) OnProgress(fn func(Progress)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onProgress = fn
}

// OnStateChange registers the state callback. Must be set before Start.
func (r *Runner) OnStateChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onState = fn
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error of the last finished run, if any.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Start launches the task in the background. Starting while a run is in
// flight is refused.
func (r *Runner) Start(ctx context.Context, task Task) error {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return fmt.Errorf("a task is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.err = nil
	r.setStateLocked(StateRunning)
	onProgress := r.onProgress
	done := r.done
	r.mu.Unlock()

	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	go func() {
		defer close(done)
		err := task(runCtx, report)

		// The cancellation state must be read before the derived
		// context is released.
		cancelled := runCtx.Err() != nil
		cancel()

		r.mu.Lock()
		defer r.mu.Unlock()
		r.err = err
		switch {
		case err == nil:
			r.setStateLocked(StateDone)
		case cancelled:
			r.setStateLocked(StateCancelled)
		default:
			r.setStateLocked(StateFailed)
		}
	}()
	return nil
}

// Cancel aborts the run in flight, if any. It does not wait.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current run finishes and returns its error.
func (r *Runner) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
	return r.Err()
}

// setStateLocked updates the state and fires the callback. The caller
// holds the mutex.
func (r *Runner) setStateLocked(s State) {
	r.state = s
	if r.onState != nil {
		// Callbacks run outside the lock to allow reentrant State calls.
		fn := r.onState
		go fn(s)
	}
}
