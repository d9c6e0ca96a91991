package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/logging"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	MaxParallel int           // <= 0 runs every call of a batch at once
	Timeout     time.Duration // per call; 0 disables
	Logger      logging.Logger
}

// Result is the outcome of one function call.
type Result struct {
	Call     core.FunctionCall
	Output   any
	Err      error
	Duration time.Duration
}

// Message converts the result into a tool message.
func (r Result) Message() core.Content {
	return core.NewToolMessage(r.Call.ID, r.Call.Name, r.Output, r.Err)
}

// Executor runs batches of function calls against a Registry with bounded
// parallelism. It never panics and returns exactly one Result per call, in
// call order.
type Executor struct {
	registry *Registry
	opts     ExecutorOptions
}

// NewExecutor creates an executor for registry.
func NewExecutor(registry *Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Timeout: 15 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	return &Executor{registry: registry, opts: opts}
}

// Execute runs calls for the given thread and returns their results in order.
func (e *Executor) Execute(ctx context.Context, threadID string, calls []core.FunctionCall) []Result {
	n := len(calls)
	results := make([]Result, n)

	if n == 0 {
		return results
	}

	if n == 1 {
		results[0] = e.ExecuteOne(ctx, threadID, calls[0])
		return results
	}

	maxPar := e.opts.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	batchStart := time.Now()
	sem := make(chan struct{}, maxPar)

	var wg sync.WaitGroup

	for i, fc := range calls {
		select {
		case <-ctx.Done():
			results[i] = Result{Call: fc, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = e.ExecuteOne(ctx, threadID, fc)
		}()
	}

	wg.Wait()

	e.opts.Logger.Debug("tool.batch.complete", "count", n, "parallelism", maxPar, "duration_ms", time.Since(batchStart).Milliseconds())

	return results
}

// ExecuteOne runs a single call.
func (e *Executor) ExecuteOne(ctx context.Context, threadID string, fc core.FunctionCall) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{Call: fc, Err: err}
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)

		defer cancel()
	}

	type outcome struct {
		out any
		err error
	}

	done := make(chan outcome, 1)

	go func() {
		var o outcome

		defer func() {
			if r := recover(); r != nil {
				e.opts.Logger.Error("tool.call.panic", "tool", fc.Name, "recover", r, "stack", string(debug.Stack()))
				o = outcome{err: &ToolError{Tool: fc.Name, Message: fmt.Sprintf("panic: %v", r), Code: CodePanic}}
			}

			done <- o
		}()

		o.out, o.err = e.call(ctx, threadID, fc)
	}()

	var res outcome

	select {
	case res = <-done:
	case <-ctx.Done():
		res = outcome{err: &ToolError{Tool: fc.Name, Message: ctx.Err().Error(), Code: CodeExecution}}
	}

	dur := time.Since(start)

	if l, ok := e.opts.Logger.(*logging.AgentLogger); ok {
		l.LogToolCall(fc.Name, dur, res.err)
	} else {
		e.opts.Logger.Info("tool.call.executed", "tool", fc.Name, "fc_id", fc.ID, "duration_ms", dur.Milliseconds(), "error", res.err != nil)
	}

	return Result{Call: fc, Output: res.out, Err: res.err, Duration: dur}
}

func (e *Executor) call(ctx context.Context, threadID string, fc core.FunctionCall) (any, error) {
	impl, ok := e.registry.Get(fc.Name)
	if !ok {
		return nil, &ToolError{Tool: fc.Name, Message: fmt.Sprintf("tool %s not found", fc.Name), Code: CodeNotFound}
	}

	args, err := parseArguments(fc.Arguments)
	if err != nil {
		return nil, &ToolError{Tool: fc.Name, Message: fmt.Sprintf("failed to unmarshal args: %v", err), Code: CodeInvalidArguments}
	}

	toolCtx := core.NewToolContext(ctx, fc.ID, func(o *core.ToolContextOptions) {
		o.ThreadID = threadID
		o.Logger = e.opts.Logger
	})

	return impl.Call(toolCtx, args)
}

// maxExactInt is the largest integer a float64 holds without rounding.
const maxExactInt = 1 << 53

// parseArguments decodes a JSON argument object. Numbers become float64,
// except integers beyond float64 precision, which stay json.Number so typed
// tools decode them exactly.
func parseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&args); err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]any{}
	}

	for k, v := range args {
		args[k] = normalizeNumbers(v)
	}

	return args, nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			if i > maxExactInt || i < -maxExactInt {
				return x
			}

			return float64(i)
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}

		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}

		return x
	default:
		return v
	}
}
