package graph

import (
	"context"
)

// TaskResult represents the result of executing a task
type TaskResult struct {
	// Files contains the paths of files written or linked by the task
	Files []string
	// Unchanged is true when every file was regenerated with identical content
	Unchanged bool
	// Skipped is true when the task had nothing to generate
	Skipped bool
	// Error contains any error that occurred during task execution
	Error error
}

// Task represents one generation step in the artifact graph
type Task interface {
	// ID returns a unique identifier for this task
	ID() string

	// Dependencies returns the tasks that must complete before this task can run
	Dependencies() []Task

	// Execute runs the task
	Execute(ctx context.Context) TaskResult
}

// Func adapts a function into a Task.
type Func struct {
	id     string
	deps   []Task
	run    func(ctx context.Context) TaskResult
	always bool
}

// NewFunc creates a task with the given id, run function and dependencies
func NewFunc(id string, run func(ctx context.Context) TaskResult, deps ...Task) *Func {
	return &Func{id: id, run: run, deps: deps}
}

// ID returns the task identifier
func (f *Func) ID() string {
	return f.id
}

// Dependencies returns the tasks this one waits for
func (f *Func) Dependencies() []Task {
	return f.deps
}

// Execute runs the wrapped function
func (f *Func) Execute(ctx context.Context) TaskResult {
	return f.run(ctx)
}

// Always marks the task to run even after an unrelated task failed, as long
// as its own dependencies succeeded.
func (f *Func) Always() *Func {
	f.always = true
	return f
}

// AlwaysRun reports whether the task was marked with Always
func (f *Func) AlwaysRun() bool {
	return f.always
}

// alwaysRunner is implemented by tasks that survive earlier failures
type alwaysRunner interface {
	AlwaysRun() bool
}

func runsAfterFailure(t Task) bool {
	a, ok := t.(alwaysRunner)
	return ok && a.AlwaysRun()
}
