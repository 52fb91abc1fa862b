package taskrunner

import (
	"context"
	"errors"
	"sync"
)

const (
	invalidConcurrencyLimitMessageConstant = "concurrency limit must be at least one"
)

// DefaultConcurrencyLimit caps simultaneous external operations when callers do not override it.
const DefaultConcurrencyLimit = 5

// ErrInvalidConcurrencyLimit indicates Runner construction with a non-positive limit.
var ErrInvalidConcurrencyLimit = errors.New(invalidConcurrencyLimitMessageConstant)

// Task represents one independent unit of work producing a per-item error.
type Task func(executionContext context.Context) error

// Runner executes batches of independent tasks with a fixed concurrency cap.
//
// The cap is construction-time state so tests can inject a single permit for
// deterministic sequencing. A task acquires its permit before performing any
// externally visible action and releases it unconditionally afterward.
type Runner struct {
	concurrencyLimit int
}

// NewRunner constructs a Runner with the supplied concurrency cap.
func NewRunner(concurrencyLimit int) (*Runner, error) {
	if concurrencyLimit < 1 {
		return nil, ErrInvalidConcurrencyLimit
	}
	return &Runner{concurrencyLimit: concurrencyLimit}, nil
}

// Run executes every task and returns one result per task in input order.
//
// A failing task never aborts its siblings; started tasks always run to
// completion. The returned slice holds nil for successful tasks and the
// task's error otherwise.
func (runner *Runner) Run(executionContext context.Context, tasks []Task) []error {
	taskResults := make([]error, len(tasks))
	permits := make(chan struct{}, runner.concurrencyLimit)

	var pendingTasks sync.WaitGroup
	for taskIndex := range tasks {
		pendingTasks.Add(1)
		go func(resultIndex int, pendingTask Task) {
			defer pendingTasks.Done()

			permits <- struct{}{}
			defer func() { <-permits }()

			taskResults[resultIndex] = pendingTask(executionContext)
		}(taskIndex, tasks[taskIndex])
	}

	pendingTasks.Wait()
	return taskResults
}

// AllSucceeded reports whether every result in the batch is nil.
func AllSucceeded(taskResults []error) bool {
	for _, taskResult := range taskResults {
		if taskResult != nil {
			return false
		}
	}
	return true
}
