package agent

import (
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/prebuilt"
	"github.com/hupe1980/agentgraph/tool"
)

// NewReactAgent returns an Assistant over prebuilt.CreateReactAgent.
func NewReactAgent(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) (*Assistant, error) {
	opts := resolveOptions("react_agent", optFns)

	app, err := prebuilt.CreateReactAgent(m, registry, func(o *prebuilt.ReactAgentOptions) {
		o.Name = opts.Name
		o.Checkpointer = opts.Checkpointer
		o.InterruptBefore = opts.InterruptBefore
		o.InterruptAfter = opts.InterruptAfter
		o.RecursionLimit = opts.RecursionLimit
		o.MaxModelCalls = opts.MaxModelCalls
		o.MaxHistoryMessages = opts.MaxHistoryMessages
		o.MaxParallelTools = opts.MaxParallelTools
		o.OnPartial = opts.OnPartial
		o.Logger = opts.Logger

		if !opts.Instruction.IsZero() {
			o.PromptFunc = opts.Instruction.PromptFunc()
		}
	})
	if err != nil {
		return nil, err
	}

	return NewAssistant(app, func(o *AssistantOptions) { o.Logger = opts.Logger }), nil
}
