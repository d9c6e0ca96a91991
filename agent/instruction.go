package agent

import (
	"context"

	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/internal/util"
	"github.com/hupe1980/agentgraph/prebuilt"
)

// Provider supplies instruction text at runtime, for example derived from the
// conversation so far.
type Provider interface {
	Instruction(ctx context.Context, state graph.MessagesState) (string, error)
}

// Func adapts an ordinary function to a Provider.
type Func func(ctx context.Context, state graph.MessagesState) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, state graph.MessagesState) (string, error) {
	return f(ctx, state)
}

// Instruction is either a static (optionally templated) text or a dynamic provider.
type Instruction struct {
	text     string
	vars     map[string]any
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromTemplate creates an Instruction whose {{ .key }}
// placeholders are filled from vars.
func NewInstructionFromTemplate(text string, vars map[string]any) Instruction {
	return Instruction{text: text, vars: vars}
}

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, state graph.MessagesState) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic reports whether the instruction is backed by text.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether the instruction is empty.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context, state graph.MessagesState) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx, state)
	}

	return util.RenderTemplate(i.text, i.vars)
}

// PromptFunc adapts the instruction to a model node prompt.
func (i Instruction) PromptFunc() prebuilt.PromptFunc {
	return i.Resolve
}
