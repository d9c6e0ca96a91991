package core

import (
	"strings"

	"github.com/goccy/go-json"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Content holds role + ordered parts. ID is assigned by the messages reducer
// when empty and is used to replace a message in place.
type Content struct {
	ID    string
	Role  string
	Name  string // optional author name
	Parts []Part
}

// NewUserMessage creates a user text message.
func NewUserMessage(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewSystemMessage creates a system text message.
func NewSystemMessage(text string) Content {
	return Content{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantMessage creates an assistant message with optional text and
// function calls.
func NewAssistantMessage(text string, calls ...FunctionCall) Content {
	c := Content{Role: RoleAssistant}
	if text != "" {
		c.Parts = append(c.Parts, TextPart{Text: text})
	}

	for _, fc := range calls {
		c.Parts = append(c.Parts, FunctionCallPart{FunctionCall: fc})
	}

	return c
}

// NewToolMessage creates a tool message carrying the result of a single call.
func NewToolMessage(callID, name string, result any, err error) Content {
	fr := FunctionResponse{ID: callID, Name: name, Response: result}
	if err != nil {
		fr.Response = nil
		fr.Error = err.Error()
	}

	return Content{Role: RoleTool, Name: name, Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
}

// Text concatenates all text parts.
func (c Content) Text() string {
	var sb strings.Builder

	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}

	return sb.String()
}

// FunctionCalls returns the function calls contained in the message.
func (c Content) FunctionCalls() []FunctionCall {
	var out []FunctionCall

	for _, p := range c.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			out = append(out, fc.FunctionCall)
		}
	}

	return out
}

// FunctionResponses returns the function responses contained in the message.
func (c Content) FunctionResponses() []FunctionResponse {
	var out []FunctionResponse

	for _, p := range c.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			out = append(out, fr.FunctionResponse)
		}
	}

	return out
}

// HasFunctionCalls reports whether the message requests any tool calls.
func (c Content) HasFunctionCalls() bool {
	for _, p := range c.Parts {
		if _, ok := p.(FunctionCallPart); ok {
			return true
		}
	}

	return false
}

type wireContent struct {
	ID    string     `json:"id,omitempty"`
	Role  string     `json:"role,omitempty"`
	Name  string     `json:"name,omitempty"`
	Parts []wirePart `json:"parts"`
}

// MarshalJSON encodes parts with a type tag.
func (c Content) MarshalJSON() ([]byte, error) {
	w := wireContent{ID: c.ID, Role: c.Role, Name: c.Name, Parts: make([]wirePart, 0, len(c.Parts))}

	for _, p := range c.Parts {
		wp, err := encodePart(p)
		if err != nil {
			return nil, err
		}

		w.Parts = append(w.Parts, wp)
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged form produced by MarshalJSON.
func (c *Content) UnmarshalJSON(b []byte) error {
	var w wireContent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	parts := make([]Part, 0, len(w.Parts))

	for _, wp := range w.Parts {
		p, err := decodePart(wp)
		if err != nil {
			return err
		}

		parts = append(parts, p)
	}

	*c = Content{ID: w.ID, Role: w.Role, Name: w.Name, Parts: parts}

	return nil
}

// LastMessage returns the final message of a conversation.
func LastMessage(msgs []Content) (Content, bool) {
	if len(msgs) == 0 {
		return Content{}, false
	}

	return msgs[len(msgs)-1], true
}
