package prebuilt

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/internal/util"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
)

// PromptFunc computes the system prompt for a model call. An empty result
// sends no instructions.
type PromptFunc func(ctx context.Context, state graph.MessagesState) (string, error)

// ModelNodeOptions configures NewModelNode.
type ModelNodeOptions struct {
	// Prompt is a static system prompt. It may use {{ .key }} placeholders
	// filled from PromptVars.
	Prompt     string
	PromptVars map[string]any
	// PromptFunc overrides Prompt when set.
	PromptFunc PromptFunc
	// Tools are declared on every request.
	Tools []model.ToolDefinition
	// MaxHistoryMessages bounds the conversation sent to the model; 0 sends
	// everything. The window always starts at a user message.
	MaxHistoryMessages int
	// MaxModelCalls caps model calls per user turn; 0 is unlimited. A
	// core.ModelLimiter found in the run context takes precedence.
	MaxModelCalls int
	// OnPartial receives streamed chunks. Setting it requests streaming.
	OnPartial func(ctx context.Context, r model.Response)
	Logger    logging.Logger
}

// NewModelNode returns a node that sends the conversation to m and appends
// the model's reply.
func NewModelNode(m model.Model, optFns ...func(o *ModelNodeOptions)) graph.NodeFunc[graph.MessagesState] {
	opts := ModelNodeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)
	info := m.Info()

	return func(ctx context.Context, state graph.MessagesState) (graph.MessagesState, error) {
		if err := turnLimiter(ctx, state.Messages, opts.MaxModelCalls).Increment(); err != nil {
			return graph.MessagesState{}, err
		}

		prompt, err := opts.prompt(ctx, state)
		if err != nil {
			return graph.MessagesState{}, fmt.Errorf("resolve prompt: %w", err)
		}

		req := model.Request{
			Instructions: prompt,
			Contents:     window(state.Messages, opts.MaxHistoryMessages),
			Tools:        opts.Tools,
			Stream:       opts.OnPartial != nil,
		}

		var onPartial func(model.Response)
		if opts.OnPartial != nil {
			onPartial = func(r model.Response) { opts.OnPartial(ctx, r) }
		}

		start := time.Now()
		resp, err := model.Collect(ctx, m, req, onPartial)

		tokens := 0
		if resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}

		if l, ok := opts.Logger.(*logging.AgentLogger); ok {
			l.LogModelCall(info.Name, tokens, time.Since(start), err)
		} else {
			opts.Logger.Debug("model.call.completed", "model", info.Name, "token_count", tokens, "duration_ms", time.Since(start).Milliseconds(), "error", err != nil)
		}

		if err != nil {
			return graph.MessagesState{}, fmt.Errorf("model %s: %w", info.Name, err)
		}

		return graph.MessagesState{Messages: []core.Content{resp.Content}}, nil
	}
}

func (o *ModelNodeOptions) prompt(ctx context.Context, state graph.MessagesState) (string, error) {
	if o.PromptFunc != nil {
		return o.PromptFunc(ctx, state)
	}

	return util.RenderTemplate(o.Prompt, o.PromptVars)
}

// turnLimiter returns the run's limiter, or one preloaded with the model
// calls already made since the last user message.
func turnLimiter(ctx context.Context, msgs []core.Content, budget int) *core.ModelLimiter {
	if l, ok := core.ModelLimiterFrom(ctx); ok {
		return l
	}

	made := 0

	for i := len(msgs) - 1; i >= 0 && msgs[i].Role != core.RoleUser; i-- {
		if msgs[i].Role == core.RoleAssistant {
			made++
		}
	}

	return core.NewModelLimiter(budget).Preload(made)
}

// window keeps at most the last max messages, starting at a user message
// when one is in range. Without one it never starts on a tool result: the
// cut moves back to the assistant message that issued the calls.
func window(msgs []core.Content, max int) []core.Content {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}

	for i := len(msgs) - max; i < len(msgs); i++ {
		if msgs[i].Role == core.RoleUser {
			return msgs[i:]
		}
	}

	start := len(msgs) - max
	for start > 0 && msgs[start].Role == core.RoleTool {
		start--
	}

	for start < len(msgs) && msgs[start].Role == core.RoleTool {
		start++
	}

	return msgs[start:]
}
