package graph

import (
	"context"

	"igloo/pkg/errors"
)

// Status is the state reported to a ProgressCallback
type Status string

const (
	StatusRunning   Status = "running"
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ExecutionResult pairs a task with its result
type ExecutionResult struct {
	Task   Task
	Result TaskResult
}

// ProgressCallback is called when task execution status changes
type ProgressCallback func(task Task, status Status)

// Runner executes the tasks of a graph one at a time
type Runner struct {
	progress ProgressCallback
}

// NewRunner creates a runner reporting to progress, which may be nil
func NewRunner(progress ProgressCallback) *Runner {
	return &Runner{progress: progress}
}

// Execute runs all tasks in topological order. After the first failure
// only tasks marked Always whose dependencies all succeeded still run. The
// first error is returned together with the results of every task that ran;
// files they wrote are left in place.
func (r *Runner) Execute(ctx context.Context, graph *Graph) ([]ExecutionResult, error) {
	orderedTasks, err := graph.TopologicalSort()
	if err != nil {
		return nil, errors.Wrap(err, "failed to sort tasks")
	}

	var results []ExecutionResult
	var firstErr error
	succeeded := map[string]bool{}

	for _, task := range orderedTasks {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		if firstErr != nil && !r.canRunAfterFailure(task, succeeded) {
			continue
		}

		r.report(task, StatusRunning)

		result := task.Execute(ctx)
		results = append(results, ExecutionResult{Task: task, Result: result})

		if result.Error != nil {
			r.report(task, StatusFailed)
			if firstErr == nil {
				firstErr = errors.Wrapf(result.Error, "task %s failed", task.ID())
			}
			continue
		}
		succeeded[task.ID()] = true

		switch {
		case result.Skipped:
			r.report(task, StatusSkipped)
		case result.Unchanged:
			r.report(task, StatusUnchanged)
		default:
			r.report(task, StatusWritten)
		}
	}

	return results, firstErr
}

func (r *Runner) canRunAfterFailure(task Task, succeeded map[string]bool) bool {
	if !runsAfterFailure(task) {
		return false
	}
	for _, dep := range task.Dependencies() {
		if !succeeded[dep.ID()] {
			return false
		}
	}
	return true
}

func (r *Runner) report(task Task, status Status) {
	if r.progress != nil {
		r.progress(task, status)
	}
}
