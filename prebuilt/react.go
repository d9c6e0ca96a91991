package prebuilt

import (
	"context"
	"time"

	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/tool"
)

// Node names of a ReAct agent graph.
const (
	AgentNodeName = "agent"
	ToolsNodeName = "tools"
)

// ReactAgentOptions configures CreateReactAgent.
type ReactAgentOptions struct {
	Name       string // defaults to "react_agent"
	Prompt     string
	PromptVars map[string]any
	PromptFunc PromptFunc

	Checkpointer    checkpoint.Saver
	InterruptBefore []string
	InterruptAfter  []string
	RecursionLimit  int

	MaxModelCalls      int
	MaxHistoryMessages int
	MaxParallelTools   int
	ToolTimeout        time.Duration

	OnPartial func(r model.Response)
	Logger    logging.Logger
}

// CreateReactAgent builds and compiles the agent/tools loop for m. A nil or
// empty registry yields a plain agent -> END graph.
func CreateReactAgent(m model.Model, registry *tool.Registry, optFns ...func(o *ReactAgentOptions)) (*graph.Compiled[graph.MessagesState], error) {
	opts := ReactAgentOptions{Name: "react_agent"}
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	hasTools := registry != nil && registry.Len() > 0

	g := graph.NewMessagesGraph()

	agent := NewModelNode(m, func(o *ModelNodeOptions) {
		o.Prompt = opts.Prompt
		o.PromptVars = opts.PromptVars
		o.PromptFunc = opts.PromptFunc
		o.MaxModelCalls = opts.MaxModelCalls
		o.MaxHistoryMessages = opts.MaxHistoryMessages
		o.Logger = opts.Logger

		if hasTools {
			o.Tools = registry.Definitions()
		}

		if opts.OnPartial != nil {
			o.OnPartial = func(_ context.Context, r model.Response) { opts.OnPartial(r) }
		}
	})

	if err := g.AddNode(AgentNodeName, agent); err != nil {
		return nil, err
	}

	if err := g.SetEntryPoint(AgentNodeName); err != nil {
		return nil, err
	}

	if hasTools {
		tools := NewToolNode(registry, func(o *tool.ExecutorOptions) {
			o.MaxParallel = opts.MaxParallelTools
			o.Logger = opts.Logger

			if opts.ToolTimeout > 0 {
				o.Timeout = opts.ToolTimeout
			}
		})

		if err := g.AddNode(ToolsNodeName, tools); err != nil {
			return nil, err
		}

		if err := g.AddConditionalEdges(AgentNodeName, ToolsCondition, map[string]string{
			ToolsNodeName: ToolsNodeName,
			graph.END:     graph.END,
		}); err != nil {
			return nil, err
		}

		if err := g.AddEdge(ToolsNodeName, AgentNodeName); err != nil {
			return nil, err
		}
	} else if err := g.SetFinishPoint(AgentNodeName); err != nil {
		return nil, err
	}

	opts.Logger.Debug("agent.react.created", "name", opts.Name, "model", m.Info().Name, "tools", toolNames(registry))

	return g.Compile(func(o *graph.CompileOptions) {
		o.Name = opts.Name
		o.Checkpointer = opts.Checkpointer
		o.InterruptBefore = opts.InterruptBefore
		o.InterruptAfter = opts.InterruptAfter
		o.RecursionLimit = opts.RecursionLimit
		o.Logger = opts.Logger
	})
}

func toolNames(r *tool.Registry) []string {
	if r == nil {
		return nil
	}

	return r.Names()
}
