package tool

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/core"
)

func sumTool() *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	return NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})
}

func TestFunctionTool_Call(t *testing.T) {
	tc := core.NewToolContext(context.Background(), "fc1")

	result, err := sumTool().Call(tc, map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	tc := core.NewToolContext(context.Background(), "fc2")

	_, err := sumTool().Call(tc, map[string]any{"a": 1.0})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Equal(t, "sum", toolErr.Tool)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failing := NewFunctionTool("fail", "Fails", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := failing.Call(core.NewToolContext(context.Background(), "fc3"), nil)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ForwardsToolError(t *testing.T) {
	custom := NewFunctionTool("custom", "Custom", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, NewToolError("custom", "unsupported category", "UNSUPPORTED")
	})

	_, err := custom.Call(core.NewToolContext(context.Background(), "fc4"), nil)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "UNSUPPORTED", toolErr.Code)
}

func TestFunctionTool_DefaultSchema(t *testing.T) {
	noop := NewFunctionTool("noop", "Nothing", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) { return "ok", nil })
	assert.Equal(t, "object", noop.Parameters()["type"])
}

type greetArgs struct {
	Name  string `json:"name" jsonschema:"required" jsonschema_description:"Who to greet"`
	Times int    `json:"times,omitempty"`
}

func TestTypedTool(t *testing.T) {
	greet := NewTypedTool("greet", "Greets someone", func(_ *core.ToolContext, a greetArgs) (any, error) {
		if a.Times == 0 {
			a.Times = 1
		}

		out := ""
		for range a.Times {
			out += "hi " + a.Name + ";"
		}

		return out, nil
	})

	props, ok := greet.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "times")

	out, err := greet.Call(core.NewToolContext(context.Background(), "fc"), map[string]any{"name": "bob", "times": 2.0})
	require.NoError(t, err)
	assert.Equal(t, "hi bob;hi bob;", out)

	_, err = greet.Call(core.NewToolContext(context.Background(), "fc"), map[string]any{"times": 1.0})

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestDecodeArgs(t *testing.T) {
	a, err := DecodeArgs[greetArgs](map[string]any{"name": "x", "times": 3.0})
	require.NoError(t, err)
	assert.Equal(t, greetArgs{Name: "x", Times: 3}, a)

	_, err = DecodeArgs[greetArgs](map[string]any{"times": "three"})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	echo := NewFunctionTool("echo", "Echo", nil, func(_ *core.ToolContext, args map[string]any) (any, error) { return args, nil })

	r, err := NewRegistry(sumTool(), echo)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"sum", "echo"}, r.Names())

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Same(t, echo, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Error(t, r.Register(sumTool()))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "sum", defs[0].Function.Name)
	assert.Equal(t, "Add numbers", defs[0].Function.Description)

	desc := r.Descriptions()
	assert.Equal(t, "echo", desc.Newest().Key)

	_, err = NewRegistry(echo, echo)
	assert.Error(t, err)

	assert.Panics(t, func() { MustRegistry(echo, echo) })
}

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	bare := &ToolError{Tool: "demo", Message: "x"}
	assert.Equal(t, "tool error in demo: x", bare.Error())
}

func TestExecutor_OrderAndErrors(t *testing.T) {
	var threadSeen atomic.Value

	slowEcho := NewFunctionTool("echo", "Echo", nil, func(tc *core.ToolContext, args map[string]any) (any, error) {
		threadSeen.Store(tc.ThreadID())

		if d, ok := args["sleep_ms"].(float64); ok {
			time.Sleep(time.Duration(d) * time.Millisecond)
		}

		return args["v"], nil
	})
	panicky := NewFunctionTool("panic", "Panics", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		panic("kaboom")
	})

	exec := NewExecutor(MustRegistry(sumTool(), slowEcho, panicky), func(o *ExecutorOptions) { o.MaxParallel = 2 })

	calls := []core.FunctionCall{
		{ID: "1", Name: "echo", Arguments: `{"v":"first","sleep_ms":30}`},
		{ID: "2", Name: "sum", Arguments: `{"a":1,"b":2}`},
		{ID: "3", Name: "missing", Arguments: `{}`},
		{ID: "4", Name: "sum", Arguments: `{not json`},
		{ID: "5", Name: "panic"},
		{ID: "6", Name: "echo", Arguments: `{"v":"last"}`},
	}

	results := exec.Execute(context.Background(), "thread-1", calls)
	require.Len(t, results, len(calls))

	for i, r := range results {
		assert.Equal(t, calls[i].ID, r.Call.ID)
	}

	assert.Equal(t, "first", results[0].Output)
	assert.Equal(t, 3.0, results[1].Output)
	assert.Equal(t, "last", results[5].Output)
	assert.Equal(t, "thread-1", threadSeen.Load())

	codeOf := func(err error) string {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return toolErr.Code
		}

		return ""
	}

	assert.Equal(t, CodeNotFound, codeOf(results[2].Err))
	assert.Equal(t, CodeInvalidArguments, codeOf(results[3].Err))
	assert.Equal(t, CodePanic, codeOf(results[4].Err))

	msg := results[2].Message()
	assert.Equal(t, core.RoleTool, msg.Role)
	require.Len(t, msg.FunctionResponses(), 1)
	assert.Equal(t, "3", msg.FunctionResponses()[0].ID)
	assert.Contains(t, msg.FunctionResponses()[0].String(), "Error:")
}

func TestExecutor_Timeout(t *testing.T) {
	block := NewFunctionTool("block", "Blocks", nil, func(tc *core.ToolContext, _ map[string]any) (any, error) {
		<-tc.Context().Done()
		time.Sleep(5 * time.Millisecond)

		return "late", nil
	})

	exec := NewExecutor(MustRegistry(block), func(o *ExecutorOptions) { o.Timeout = 20 * time.Millisecond })

	res := exec.ExecuteOne(context.Background(), "", core.FunctionCall{ID: "x", Name: "block"})

	var toolErr *ToolError
	require.True(t, errors.As(res.Err, &toolErr))
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Nil(t, res.Output)
}

func TestExecutor_CancelledContext(t *testing.T) {
	exec := NewExecutor(MustRegistry(sumTool()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := exec.Execute(ctx, "", []core.FunctionCall{
		{ID: "a", Name: "sum", Arguments: `{"a":1,"b":1}`},
		{ID: "b", Name: "sum", Arguments: `{"a":1,"b":1}`},
	})

	require.Len(t, results, 2)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestExecutor_LargeIntegersDecodeExactly(t *testing.T) {
	type bounds struct {
		Lo int64 `json:"lo"`
		Hi int64 `json:"hi"`
	}

	echo := NewTypedTool("bounds", "Echo bounds", func(_ *core.ToolContext, b bounds) (any, error) { return b, nil })

	res := NewExecutor(MustRegistry(echo)).ExecuteOne(context.Background(), "", core.FunctionCall{
		ID:        "b",
		Name:      "bounds",
		Arguments: `{"lo":-9223372036854775808,"hi":9223372036854775807}`,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, bounds{Lo: math.MinInt64, Hi: math.MaxInt64}, res.Output)
}

func TestParseArguments(t *testing.T) {
	args, err := parseArguments(`{"a":1,"b":2.5,"big":9007199254740993,"nested":{"n":3},"list":[4,"x"]}`)
	require.NoError(t, err)

	assert.Equal(t, 1.0, args["a"])
	assert.Equal(t, 2.5, args["b"])
	assert.Equal(t, json.Number("9007199254740993"), args["big"])
	assert.Equal(t, map[string]any{"n": 3.0}, args["nested"])
	assert.Equal(t, []any{4.0, "x"}, args["list"])

	empty, err := parseArguments("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseArguments(`[1]`)
	assert.Error(t, err)
}

func TestExecutor_Empty(t *testing.T) {
	assert.Empty(t, NewExecutor(MustRegistry()).Execute(context.Background(), "", nil))
}
