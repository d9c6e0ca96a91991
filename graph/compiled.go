package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/logging"
)

// DefaultRecursionLimit bounds the number of supersteps of a run.
const DefaultRecursionLimit = 25

// CompileOptions configures Compile.
type CompileOptions struct {
	// Checkpointer persists state per thread. Without one every run starts
	// from the zero state.
	Checkpointer checkpoint.Saver
	// InterruptBefore pauses a run before any of these nodes executes.
	InterruptBefore []string
	// InterruptAfter pauses a run after any of these nodes executed.
	InterruptAfter []string
	// RecursionLimit is the default superstep budget of a run.
	RecursionLimit int
	// Name identifies the graph in logs and diagrams.
	Name string
	// Logger receives graph.* events. Defaults to a no-op logger.
	Logger logging.Logger
}

// Config selects the thread and checkpoint a run operates on.
type Config struct {
	ThreadID       string
	CheckpointID   string // resume from this checkpoint instead of the newest
	RecursionLimit int    // overrides the compiled limit when > 0
}

// EventKind distinguishes stream events.
type EventKind string

const (
	// EventNode is emitted once per node that completed in a superstep.
	EventNode EventKind = "node"
	// EventInterrupt is emitted when a run pauses at an interrupt.
	EventInterrupt EventKind = "interrupt"
)

// Event reports progress of a streamed run.
type Event[S any] struct {
	Kind   EventKind
	Step   int
	Node   string   // node that produced Update (EventNode)
	Update S        // the node's raw update (EventNode)
	State  S        // merged state after the superstep
	Next   []string // nodes scheduled next
}

// Compiled is an executable graph. It is safe for concurrent use; runs on the
// same thread are serialized.
type Compiled[S any] struct {
	name            string
	reducer         Reducer[S]
	nodes           map[string]NodeFunc[S]
	rank            map[string]int
	order           []string
	edges           map[string][]string
	branches        map[string]branch[S]
	saver           checkpoint.Saver
	interruptBefore map[string]struct{}
	interruptAfter  map[string]struct{}
	recursionLimit  int
	logger          logging.Logger

	threadLocks *haxmap.Map[string, *sync.Mutex]
}

func (c *Compiled[S]) init() {
	c.logger = logging.OrNoOp(c.logger)
	c.threadLocks = haxmap.New[string, *sync.Mutex]()
}

// Name returns the graph name.
func (c *Compiled[S]) Name() string { return c.name }

// Nodes returns node names in registration order.
func (c *Compiled[S]) Nodes() []string { return append([]string(nil), c.order...) }

// Checkpointer returns the attached saver, or nil.
func (c *Compiled[S]) Checkpointer() checkpoint.Saver { return c.saver }

// Invoke runs the graph to completion (or the next interrupt) and returns the
// final state. A nil input resumes the thread's pending nodes.
func (c *Compiled[S]) Invoke(ctx context.Context, input *S, cfg Config) (S, error) {
	return c.run(ctx, input, cfg, nil)
}

// Stream runs the graph in the background and reports progress on the events
// channel. Both channels are closed when the run ends; at most one error is sent.
func (c *Compiled[S]) Stream(ctx context.Context, input *S, cfg Config) (<-chan Event[S], <-chan error) {
	eventsCh := make(chan Event[S], 16)
	errorsCh := make(chan error, 1)

	go func() {
		defer close(eventsCh)
		defer close(errorsCh)

		emit := func(ev Event[S]) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case eventsCh <- ev:
				return nil
			}
		}

		if _, err := c.run(ctx, input, cfg, emit); err != nil {
			errorsCh <- err
		}
	}()

	return eventsCh, errorsCh
}

type runState[S any] struct {
	state    S
	next     []string
	parentID string
	step     int
	resumed  bool
}

func (c *Compiled[S]) lockThread(threadID string) func() {
	mu, _ := c.threadLocks.GetOrCompute(threadID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()

	return mu.Unlock
}

func (c *Compiled[S]) run(ctx context.Context, input *S, cfg Config, emit func(Event[S]) error) (S, error) {
	if c.saver != nil {
		defer c.lockThread(cfg.ThreadID)()
	}

	runID := uuid.NewString()
	log := c.logger
	start := time.Now()

	limit := c.recursionLimit
	if cfg.RecursionLimit > 0 {
		limit = cfg.RecursionLimit
	}

	rs, err := c.prepare(ctx, input, cfg)
	if err != nil {
		return rs.state, err
	}

	log.Debug("graph.run.start", "graph", c.name, "thread_id", cfg.ThreadID, "run_id", runID, "resumed", rs.resumed, "next", rs.next)

	for steps := 0; len(rs.next) > 0; steps++ {
		if err := ctx.Err(); err != nil {
			return rs.state, err
		}

		if steps >= limit {
			log.Warn("graph.recursion_limit", "graph", c.name, "thread_id", cfg.ThreadID, "limit", limit)
			return rs.state, fmt.Errorf("%w: %d steps", ErrRecursionLimit, limit)
		}

		if !(steps == 0 && rs.resumed) && c.hits(rs.next, c.interruptBefore) {
			log.Info("graph.interrupt", "graph", c.name, "thread_id", cfg.ThreadID, "when", "before", "next", rs.next)
			return rs.state, c.emitInterrupt(emit, rs)
		}

		ran := rs.next
		stepStart := time.Now()

		updates, err := c.runStep(ctx, ran, rs.state, rs.step+1, cfg.ThreadID)
		if err != nil {
			return rs.state, err
		}

		for _, u := range updates {
			rs.state = c.reducer(rs.state, u)
		}

		rs.step++

		next, err := c.successors(ctx, ran, rs.state)
		if err != nil {
			return rs.state, err
		}

		if err := c.save(ctx, cfg.ThreadID, &rs, next, checkpoint.Metadata{Source: checkpoint.SourceLoop, Step: rs.step, Writes: ran}); err != nil {
			return rs.state, err
		}

		if l, ok := log.(*logging.AgentLogger); ok {
			l.LogStep(c.name, rs.step, ran, time.Since(stepStart))
		}

		if emit != nil {
			for i, n := range ran {
				if err := emit(Event[S]{Kind: EventNode, Step: rs.step, Node: n, Update: updates[i], State: rs.state, Next: next}); err != nil {
					return rs.state, err
				}
			}
		}

		rs.next = next

		if len(next) > 0 && c.hits(ran, c.interruptAfter) {
			log.Info("graph.interrupt", "graph", c.name, "thread_id", cfg.ThreadID, "when", "after", "next", next)
			return rs.state, c.emitInterrupt(emit, rs)
		}
	}

	log.Debug("graph.run.completed", "graph", c.name, "thread_id", cfg.ThreadID, "run_id", runID, "step", rs.step, "duration", time.Since(start))

	return rs.state, nil
}

// prepare loads the thread's checkpoint and applies the input.
func (c *Compiled[S]) prepare(ctx context.Context, input *S, cfg Config) (runState[S], error) {
	rs := runState[S]{step: -1}

	if c.saver != nil {
		cp, err := c.saver.Get(ctx, cfg.ThreadID, cfg.CheckpointID)

		switch {
		case err == nil:
			st, derr := c.decode(cp.State)
			if derr != nil {
				return rs, derr
			}

			rs.state, rs.next, rs.parentID, rs.step = st, cp.Next, cp.ID, cp.Step
		case errors.Is(err, checkpoint.ErrNotFound) && cfg.CheckpointID == "":
		default:
			return rs, fmt.Errorf("graph: load checkpoint: %w", err)
		}
	}

	if input == nil {
		if len(rs.next) == 0 {
			return rs, ErrNothingToResume
		}

		rs.resumed = true

		return rs, nil
	}

	rs.state = c.reducer(rs.state, *input)
	rs.step++

	next, err := c.successors(ctx, []string{START}, rs.state)
	if err != nil {
		return rs, err
	}

	if err := c.save(ctx, cfg.ThreadID, &rs, next, checkpoint.Metadata{Source: checkpoint.SourceInput, Step: rs.step}); err != nil {
		return rs, err
	}

	rs.next = next

	return rs, nil
}

// runStep executes nodes concurrently and returns their updates in the order of nodes.
func (c *Compiled[S]) runStep(ctx context.Context, nodes []string, state S, step int, threadID string) ([]S, error) {
	updates := make([]S, len(nodes))

	if len(nodes) == 1 {
		u, err := c.runNode(ctx, nodes[0], state, step, threadID)
		if err != nil {
			return nil, err
		}

		updates[0] = u

		return updates, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	for i, n := range nodes {
		g.Go(func() error {
			u, err := c.runNode(gctx, n, state, step, threadID)
			if err != nil {
				return err
			}

			updates[i] = u

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return updates, nil
}

func (c *Compiled[S]) runNode(ctx context.Context, name string, state S, step int, threadID string) (update S, err error) {
	fn := c.nodes[name]
	start := time.Now()

	c.logger.Debug("graph.node.start", "graph", c.name, "node", name, "step", step, "thread_id", threadID)

	defer func() {
		if r := recover(); r != nil {
			err = &NodeError{Node: name, Step: step, Err: fmt.Errorf("panic: %v", r)}
		}

		if err != nil {
			c.logger.Error("graph.node.error", "graph", c.name, "node", name, "step", step, "error", err.Error())
			return
		}

		c.logger.Debug("graph.node.end", "graph", c.name, "node", name, "step", step, "duration", time.Since(start))
	}()

	update, err = fn(withRunInfo(ctx, RunInfo{Graph: c.name, ThreadID: threadID, Node: name, Step: step}), state)
	if err != nil {
		return update, &NodeError{Node: name, Step: step, Err: err}
	}

	return update, nil
}

// successors resolves the nodes scheduled after the given ones, deduplicated
// and sorted by registration order. END is dropped.
func (c *Compiled[S]) successors(ctx context.Context, from []string, state S) ([]string, error) {
	seen := map[string]struct{}{}

	for _, n := range from {
		targets, err := c.targets(ctx, n, state)
		if err != nil {
			return nil, err
		}

		for _, t := range targets {
			if t != END {
				seen[t] = struct{}{}
			}
		}
	}

	next := make([]string, 0, len(seen))
	for n := range seen {
		next = append(next, n)
	}

	sort.Slice(next, func(i, j int) bool { return c.rank[next[i]] < c.rank[next[j]] })

	return next, nil
}

func (c *Compiled[S]) targets(ctx context.Context, from string, state S) ([]string, error) {
	br, ok := c.branches[from]
	if !ok {
		return c.edges[from], nil
	}

	key, err := br.router(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("graph: router of %q: %w", from, err)
	}

	target := key
	if br.pathMap != nil {
		t, ok := br.pathMap[key]
		if !ok {
			return nil, fmt.Errorf("graph: router of %q returned unmapped key %q", from, key)
		}

		target = t
	}

	if target != END {
		if _, ok := c.nodes[target]; !ok {
			return nil, fmt.Errorf("%w: router of %q returned %q", ErrNodeNotFound, from, target)
		}
	}

	return []string{target}, nil
}

func (c *Compiled[S]) hits(nodes []string, set map[string]struct{}) bool {
	for _, n := range nodes {
		if _, ok := set[n]; ok {
			return true
		}
	}

	return false
}

func (c *Compiled[S]) emitInterrupt(emit func(Event[S]) error, rs runState[S]) error {
	if emit == nil {
		return nil
	}

	return emit(Event[S]{Kind: EventInterrupt, Step: rs.step, State: rs.state, Next: rs.next})
}

func (c *Compiled[S]) save(ctx context.Context, threadID string, rs *runState[S], next []string, md checkpoint.Metadata) error {
	if c.saver == nil {
		return nil
	}

	b, err := json.Marshal(rs.state)
	if err != nil {
		return fmt.Errorf("graph: encode state: %w", err)
	}

	cp, err := c.saver.Put(ctx, checkpoint.Checkpoint{
		ThreadID: threadID,
		ParentID: rs.parentID,
		Step:     rs.step,
		State:    b,
		Next:     next,
		Metadata: md,
	})
	if err != nil {
		return fmt.Errorf("graph: save checkpoint: %w", err)
	}

	rs.parentID = cp.ID

	return nil
}

func (c *Compiled[S]) decode(raw []byte) (S, error) {
	var s S
	if len(raw) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("graph: decode state: %w", err)
	}

	return s, nil
}
