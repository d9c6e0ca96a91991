package prebuilt

import (
	"context"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/tool"
)

// ToolNode returns a node executing the function calls of the last assistant
// message. It appends one tool message per call, in call order. Failing calls
// (unknown tool, bad arguments, tool errors, panics) become error tool
// messages; the node itself never fails.
func ToolNode(exec *tool.Executor) graph.NodeFunc[graph.MessagesState] {
	return func(ctx context.Context, state graph.MessagesState) (graph.MessagesState, error) {
		last, ok := core.LastMessage(state.Messages)
		if !ok || last.Role != core.RoleAssistant || !last.HasFunctionCalls() {
			return graph.MessagesState{}, nil
		}

		ri, _ := graph.RunInfoFrom(ctx)

		results := exec.Execute(ctx, ri.ThreadID, last.FunctionCalls())

		msgs := make([]core.Content, 0, len(results))
		for _, r := range results {
			msgs = append(msgs, r.Message())
		}

		return graph.MessagesState{Messages: msgs}, nil
	}
}

// NewToolNode is ToolNode over a fresh executor for registry.
func NewToolNode(registry *tool.Registry, optFns ...func(o *tool.ExecutorOptions)) graph.NodeFunc[graph.MessagesState] {
	return ToolNode(tool.NewExecutor(registry, optFns...))
}

// ToolsCondition routes to ToolsNodeName when the last message requests
// function calls and to END otherwise.
func ToolsCondition(_ context.Context, state graph.MessagesState) (string, error) {
	if last, ok := core.LastMessage(state.Messages); ok && last.HasFunctionCalls() {
		return ToolsNodeName, nil
	}

	return graph.END, nil
}
