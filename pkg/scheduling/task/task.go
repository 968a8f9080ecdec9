package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
)

// Task represents a unit of work executed by the scheduler's worker.
type Task interface {
	// Execute runs the task with the given context.
	// The context is canceled when the owning scheduler is stopping; a task
	// that ignores it still runs to completion.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Func adapts a plain callback with no arguments and no result.
func Func(fn func()) Task {
	if fn == nil {
		return nil
	}
	return TaskFunc(func(context.Context) error {
		fn()
		return nil
	})
}

// Kind tells one-shot executions apart from recurring ones.
type Kind string

const (
	KindOneShot  Kind = "oneshot"
	KindPeriodic Kind = "periodic"
	KindCron     Kind = "cron"
)

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Kind is how the task was scheduled
	Kind Kind

	// HandleID identifies the periodic entry; empty for one-shot tasks
	HandleID string

	// Error is the returned error, or an ErrTaskPanicked-wrapping error for a recovered panic
	Error error

	// Panic holds the recovered value when the task panicked
	Panic interface{}

	// Stack is the goroutine stack captured at recovery time
	Stack []byte

	// Started is when execution began
	Started time.Time

	// Duration is how long the task took to execute
	Duration time.Duration
}

// Failed reports whether the execution returned an error or panicked.
func (r Result) Failed() bool {
	return r.Error != nil
}

// Panicked reports whether the execution ended in a recovered panic.
func (r Result) Panicked() bool {
	return r.Stack != nil
}

// Run executes t synchronously on the calling goroutine.
// A panic inside t is recovered and reported through the Result, so a
// misbehaving task never unwinds into the caller.
func Run(ctx context.Context, t Task, kind Kind) (result Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	result = Result{Task: t, Kind: kind, Started: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			result.Panic = r
			result.Stack = debug.Stack()
			result.Error = fmt.Errorf("%w: %v", tlerrors.ErrTaskPanicked, r)
		}
		result.Duration = time.Since(result.Started)
	}()

	result.Error = t.Execute(ctx)
	return result
}
