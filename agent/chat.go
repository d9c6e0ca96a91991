package agent

import (
	"context"

	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/prebuilt"
)

// ChatbotNode is the single node of the chat graph.
const ChatbotNode = "chatbot"

// NewChatGraph builds the manual chat graph START -> chatbot -> END. The
// system prompt accompanies the model call only while the thread holds just
// its first message; it is never stored in the conversation.
func NewChatGraph(m model.Model, optFns ...func(o *Options)) (*graph.Compiled[graph.MessagesState], error) {
	opts := resolveOptions("chat_agent", optFns)

	inst := opts.Instruction
	if inst.IsZero() {
		inst = NewInstructionFromText(DefaultSystemPrompt)
	}

	chatbot := prebuilt.NewModelNode(m, func(o *prebuilt.ModelNodeOptions) {
		o.PromptFunc = func(ctx context.Context, state graph.MessagesState) (string, error) {
			if len(state.Messages) != 1 {
				return "", nil
			}

			return inst.Resolve(ctx, state)
		}
		o.MaxModelCalls = opts.MaxModelCalls
		o.MaxHistoryMessages = opts.MaxHistoryMessages
		o.Logger = opts.Logger

		if opts.OnPartial != nil {
			o.OnPartial = func(_ context.Context, r model.Response) { opts.OnPartial(r) }
		}
	})

	g := graph.NewMessagesGraph()

	if err := g.AddNode(ChatbotNode, chatbot); err != nil {
		return nil, err
	}

	if err := g.SetEntryPoint(ChatbotNode); err != nil {
		return nil, err
	}

	if err := g.SetFinishPoint(ChatbotNode); err != nil {
		return nil, err
	}

	return g.Compile(func(o *graph.CompileOptions) {
		o.Name = opts.Name
		o.Checkpointer = opts.Checkpointer
		o.InterruptBefore = opts.InterruptBefore
		o.InterruptAfter = opts.InterruptAfter
		o.RecursionLimit = opts.RecursionLimit
		o.Logger = opts.Logger
	})
}

// NewChatAgent returns an Assistant over NewChatGraph.
func NewChatAgent(m model.Model, optFns ...func(o *Options)) (*Assistant, error) {
	opts := resolveOptions("chat_agent", optFns)

	app, err := NewChatGraph(m, func(o *Options) { *o = opts })
	if err != nil {
		return nil, err
	}

	return NewAssistant(app, func(o *AssistantOptions) { o.Logger = opts.Logger }), nil
}
