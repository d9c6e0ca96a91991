package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrRecursionLimit is returned when a run exceeds its superstep budget.
	ErrRecursionLimit = errors.New("graph: recursion limit reached")
	// ErrNoEntryPoint is returned by Compile when no edge leaves START.
	ErrNoEntryPoint = errors.New("graph: no entry point")
	// ErrNodeNotFound is returned when an edge or option names an unknown node.
	ErrNodeNotFound = errors.New("graph: node not found")
	// ErrNoCheckpointer is returned by state inspection on a graph compiled without a saver.
	ErrNoCheckpointer = errors.New("graph: no checkpointer configured")
	// ErrNothingToResume is returned when a nil input is given for a thread without pending nodes.
	ErrNothingToResume = errors.New("graph: nothing to resume")
)

// NodeError wraps an error returned (or a panic raised) by a node.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("graph: node %q failed at step %d: %v", e.Node, e.Step, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
