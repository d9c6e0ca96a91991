package agent

import (
	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
)

// DefaultSystemPrompt is the chat agent's persona.
const DefaultSystemPrompt = `You are a friendly and helpful AI assistant.
You can:
1. Answer all kinds of questions
2. Hold a natural conversation
3. Offer advice and help
4. Remember what was said earlier in the conversation

Keep your answers concise and friendly.`

// Options configures the agent constructors.
type Options struct {
	// Name of the compiled graph.
	Name string
	// Instruction is the system prompt. Defaults to DefaultSystemPrompt for
	// chat agents and to none for ReAct agents.
	Instruction Instruction
	// Checkpointer persists conversations. Defaults to a MemorySaver.
	Checkpointer checkpoint.Saver

	InterruptBefore []string
	InterruptAfter  []string
	RecursionLimit  int

	// MaxModelCalls caps model calls per user turn; 0 is unlimited.
	MaxModelCalls      int
	MaxHistoryMessages int
	MaxParallelTools   int

	// OnPartial receives streamed model chunks. Setting it requests streaming.
	OnPartial func(r model.Response)
	Logger    logging.Logger
}

func resolveOptions(name string, optFns []func(o *Options)) Options {
	opts := Options{Name: name}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Checkpointer == nil {
		opts.Checkpointer = checkpoint.NewMemorySaver()
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	return opts
}
