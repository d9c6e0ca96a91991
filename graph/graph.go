package graph

import (
	"context"
	"fmt"
)

// Reserved node names marking the virtual entry and exit of a graph.
const (
	START = "__start__"
	END   = "__end__"
)

// NodeFunc computes a partial state update from the current state. The state
// passed in is shared with concurrently running nodes and must not be mutated.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// RouterFunc selects the key of the next node from the current state.
type RouterFunc[S any] func(ctx context.Context, state S) (string, error)

// Reducer merges a node update into the current state.
type Reducer[S any] func(current, update S) S

type branch[S any] struct {
	router  RouterFunc[S]
	pathMap map[string]string // nil maps keys to node names verbatim
}

// StateGraph is a mutable graph definition. It is not safe for concurrent use;
// build it once and Compile it.
type StateGraph[S any] struct {
	reducer  Reducer[S]
	nodes    map[string]NodeFunc[S]
	order    []string
	edges    map[string][]string
	branches map[string]branch[S]
}

// New creates an empty graph. A nil reducer makes every update replace the state.
func New[S any](reducer Reducer[S]) *StateGraph[S] {
	if reducer == nil {
		reducer = func(_, update S) S { return update }
	}

	return &StateGraph[S]{
		reducer:  reducer,
		nodes:    map[string]NodeFunc[S]{},
		edges:    map[string][]string{},
		branches: map[string]branch[S]{},
	}
}

// AddNode registers fn under name.
func (g *StateGraph[S]) AddNode(name string, fn NodeFunc[S]) error {
	switch {
	case name == "":
		return fmt.Errorf("graph: node name must not be empty")
	case name == START || name == END:
		return fmt.Errorf("graph: node name %q is reserved", name)
	case fn == nil:
		return fmt.Errorf("graph: node %q has no function", name)
	}

	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("graph: node %q already exists", name)
	}

	g.nodes[name] = fn
	g.order = append(g.order, name)

	return nil
}

// AddEdge adds a static edge. Several edges leaving the same node fan out
// and run their targets in the same superstep.
func (g *StateGraph[S]) AddEdge(from, to string) error {
	if from == END {
		return fmt.Errorf("graph: END cannot have outgoing edges")
	}

	if to == START {
		return fmt.Errorf("graph: START cannot be an edge target")
	}

	if _, ok := g.branches[from]; ok {
		return fmt.Errorf("graph: node %q already has conditional edges", from)
	}

	for _, t := range g.edges[from] {
		if t == to {
			return nil
		}
	}

	g.edges[from] = append(g.edges[from], to)

	return nil
}

// AddConditionalEdges routes from a node using router. When pathMap is given
// the router's key is translated through it; otherwise the key must be a node
// name or END.
func (g *StateGraph[S]) AddConditionalEdges(from string, router RouterFunc[S], pathMap map[string]string) error {
	if router == nil {
		return fmt.Errorf("graph: conditional edges from %q need a router", from)
	}

	if from == END {
		return fmt.Errorf("graph: END cannot have outgoing edges")
	}

	if _, ok := g.branches[from]; ok {
		return fmt.Errorf("graph: node %q already has conditional edges", from)
	}

	if len(g.edges[from]) > 0 {
		return fmt.Errorf("graph: node %q already has static edges", from)
	}

	var pm map[string]string
	if pathMap != nil {
		pm = make(map[string]string, len(pathMap))
		for k, v := range pathMap {
			pm[k] = v
		}
	}

	g.branches[from] = branch[S]{router: router, pathMap: pm}

	return nil
}

// SetEntryPoint is shorthand for AddEdge(START, name).
func (g *StateGraph[S]) SetEntryPoint(name string) error { return g.AddEdge(START, name) }

// SetConditionalEntryPoint routes from START with router.
func (g *StateGraph[S]) SetConditionalEntryPoint(router RouterFunc[S], pathMap map[string]string) error {
	return g.AddConditionalEdges(START, router, pathMap)
}

// SetFinishPoint is shorthand for AddEdge(name, END).
func (g *StateGraph[S]) SetFinishPoint(name string) error { return g.AddEdge(name, END) }

func (g *StateGraph[S]) knows(name string) bool {
	if name == START || name == END {
		return true
	}

	_, ok := g.nodes[name]

	return ok
}

func (g *StateGraph[S]) validate(opts CompileOptions) error {
	if len(g.edges[START]) == 0 {
		if _, ok := g.branches[START]; !ok {
			return ErrNoEntryPoint
		}
	}

	for from, tos := range g.edges {
		if !g.knows(from) {
			return fmt.Errorf("%w: edge source %q", ErrNodeNotFound, from)
		}

		for _, to := range tos {
			if !g.knows(to) {
				return fmt.Errorf("%w: edge target %q", ErrNodeNotFound, to)
			}
		}
	}

	for from, br := range g.branches {
		if !g.knows(from) {
			return fmt.Errorf("%w: branch source %q", ErrNodeNotFound, from)
		}

		for key, to := range br.pathMap {
			if to == START || !g.knows(to) {
				return fmt.Errorf("%w: branch %q key %q targets %q", ErrNodeNotFound, from, key, to)
			}
		}
	}

	for _, n := range append(append([]string{}, opts.InterruptBefore...), opts.InterruptAfter...) {
		if _, ok := g.nodes[n]; !ok {
			return fmt.Errorf("%w: interrupt node %q", ErrNodeNotFound, n)
		}
	}

	if (len(opts.InterruptBefore) > 0 || len(opts.InterruptAfter) > 0) && opts.Checkpointer == nil {
		return fmt.Errorf("graph: interrupts require a checkpointer")
	}

	return nil
}

// Compile validates the graph and returns an executable copy of it.
func (g *StateGraph[S]) Compile(optFns ...func(o *CompileOptions)) (*Compiled[S], error) {
	opts := CompileOptions{RecursionLimit: DefaultRecursionLimit, Name: "graph"}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.RecursionLimit <= 0 {
		opts.RecursionLimit = DefaultRecursionLimit
	}

	if err := g.validate(opts); err != nil {
		return nil, err
	}

	c := &Compiled[S]{
		name:            opts.Name,
		reducer:         g.reducer,
		nodes:           make(map[string]NodeFunc[S], len(g.nodes)),
		rank:            make(map[string]int, len(g.order)),
		order:           append([]string(nil), g.order...),
		edges:           make(map[string][]string, len(g.edges)),
		branches:        make(map[string]branch[S], len(g.branches)),
		saver:           opts.Checkpointer,
		interruptBefore: toSet(opts.InterruptBefore),
		interruptAfter:  toSet(opts.InterruptAfter),
		recursionLimit:  opts.RecursionLimit,
		logger:          opts.Logger,
	}

	for k, v := range g.nodes {
		c.nodes[k] = v
	}

	for i, n := range g.order {
		c.rank[n] = i
	}

	for k, v := range g.edges {
		c.edges[k] = append([]string(nil), v...)
	}

	for k, v := range g.branches {
		c.branches[k] = v
	}

	c.init()

	return c, nil
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	return set
}
