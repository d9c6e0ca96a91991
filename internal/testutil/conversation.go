package testutil

import (
	"fmt"

	"github.com/hupe1980/agentgraph/core"
)

// ConversationBuilder provides a fluent helper for constructing message
// histories in tests.
//
//	msgs := NewConversation().User("hi").Assistant("hello").Build()
//
// IDs are left empty unless WithIDs is called, so the graph reducer assigns them.
type ConversationBuilder struct {
	msgs   []core.Content
	withID bool
}

// NewConversation creates an empty builder.
func NewConversation() *ConversationBuilder { return &ConversationBuilder{} }

// WithIDs gives every message a deterministic id "m<index>" (chainable).
func (b *ConversationBuilder) WithIDs() *ConversationBuilder { b.withID = true; return b }

// System appends a system message (chainable).
func (b *ConversationBuilder) System(t string) *ConversationBuilder {
	return b.add(core.NewSystemMessage(t))
}

// User appends a user message (chainable).
func (b *ConversationBuilder) User(t string) *ConversationBuilder {
	return b.add(core.NewUserMessage(t))
}

// Assistant appends an assistant text message (chainable).
func (b *ConversationBuilder) Assistant(t string) *ConversationBuilder {
	return b.add(core.NewAssistantMessage(t))
}

// ToolCall appends an assistant message requesting one function call (chainable).
func (b *ConversationBuilder) ToolCall(id, name, args string) *ConversationBuilder {
	return b.add(core.NewAssistantMessage("", core.FunctionCall{ID: id, Name: name, Arguments: args}))
}

// ToolResult appends the tool message answering call id (chainable).
func (b *ConversationBuilder) ToolResult(id, name string, result any, err error) *ConversationBuilder {
	return b.add(core.NewToolMessage(id, name, result, err))
}

func (b *ConversationBuilder) add(c core.Content) *ConversationBuilder {
	if b.withID {
		c.ID = fmt.Sprintf("m%d", len(b.msgs))
	}

	b.msgs = append(b.msgs, c)

	return b
}

// Build returns a copy of the accumulated messages.
func (b *ConversationBuilder) Build() []core.Content {
	return append([]core.Content(nil), b.msgs...)
}

// Roles lists the role of every message.
func Roles(msgs []core.Content) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}

	return out
}

// Texts lists the text of every message.
func Texts(msgs []core.Content) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text()
	}

	return out
}
