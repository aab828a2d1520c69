package graph

import (
	"igloo/pkg/errors"
)

// Graph represents a directed acyclic graph of tasks
type Graph struct {
	tasks []Task
	edges map[string][]string // task ID -> list of dependency task IDs
}

// NewGraph creates a new empty graph
func NewGraph() *Graph {
	return &Graph{
		tasks: make([]Task, 0),
		edges: make(map[string][]string),
	}
}

// AddTask adds a task to the graph
func (g *Graph) AddTask(task Task) error {
	if _, exists := g.edges[task.ID()]; exists {
		return errors.Newf("task with ID %s already exists", task.ID())
	}

	g.tasks = append(g.tasks, task)

	depIDs := make([]string, 0, len(task.Dependencies()))
	for _, dep := range task.Dependencies() {
		depIDs = append(depIDs, dep.ID())
	}
	g.edges[task.ID()] = depIDs

	return nil
}

// GetTask returns a task by its ID
func (g *Graph) GetTask(id string) (Task, error) {
	for _, task := range g.tasks {
		if task.ID() == id {
			return task, nil
		}
	}
	return nil, errors.Newf("task with ID %s not found", id)
}

// GetTasks returns all tasks in insertion order
func (g *Graph) GetTasks() []Task {
	return g.tasks
}

// TopologicalSort returns tasks in topological order (dependencies first).
// Ties are broken by insertion order so the result is deterministic.
func (g *Graph) TopologicalSort() ([]Task, error) {
	// Kahn's algorithm
	inDegree := make(map[string]int)
	for _, task := range g.tasks {
		for _, dep := range g.edges[task.ID()] {
			if _, ok := g.edges[dep]; !ok {
				return nil, errors.Newf("task %s depends on %s which is not in the graph", task.ID(), dep)
			}
		}
		inDegree[task.ID()] = len(g.edges[task.ID()])
	}

	done := make(map[string]bool)
	var result []Task

	for len(result) < len(g.tasks) {
		progressed := false
		for _, task := range g.tasks {
			id := task.ID()
			if done[id] || inDegree[id] > 0 {
				continue
			}
			done[id] = true
			result = append(result, task)
			progressed = true

			// Release tasks that were waiting on this one
			for _, other := range g.tasks {
				for _, dep := range g.edges[other.ID()] {
					if dep == id {
						inDegree[other.ID()]--
					}
				}
			}
			break
		}
		if !progressed {
			return nil, errors.New("cycle detected in task graph")
		}
	}

	return result, nil
}
