package core

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// DataPart is a structured data segment.
type DataPart struct {
	Data map[string]any
}

func (DataPart) isPart() {}

// FunctionCall describes a tool invocation requested by the model.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // raw JSON object
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"` // matches the originating FunctionCall ID
	Name     string `json:"name"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// String renders the response the way it is shown to a model: errors are
// prefixed, strings are passed through and anything else is JSON encoded.
func (r FunctionResponse) String() string {
	if r.Error != "" {
		return "Error: " + r.Error
	}

	switch v := r.Response.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	b, err := json.Marshal(r.Response)
	if err != nil {
		return fmt.Sprintf("%v", r.Response)
	}

	return string(b)
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

func (FunctionResponsePart) isPart() {}

const (
	partTypeText             = "text"
	partTypeData             = "data"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

type wirePart struct {
	Type             string            `json:"type"`
	Text             string            `json:"text,omitempty"`
	Data             map[string]any    `json:"data,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

func encodePart(p Part) (wirePart, error) {
	switch v := p.(type) {
	case TextPart:
		return wirePart{Type: partTypeText, Text: v.Text}, nil
	case DataPart:
		return wirePart{Type: partTypeData, Data: v.Data}, nil
	case FunctionCallPart:
		fc := v.FunctionCall
		return wirePart{Type: partTypeFunctionCall, FunctionCall: &fc}, nil
	case FunctionResponsePart:
		fr := v.FunctionResponse
		return wirePart{Type: partTypeFunctionResponse, FunctionResponse: &fr}, nil
	default:
		return wirePart{}, fmt.Errorf("unsupported part type %T", p)
	}
}

func decodePart(w wirePart) (Part, error) {
	switch w.Type {
	case partTypeText:
		return TextPart{Text: w.Text}, nil
	case partTypeData:
		return DataPart{Data: w.Data}, nil
	case partTypeFunctionCall:
		if w.FunctionCall == nil {
			return nil, fmt.Errorf("function_call part without payload")
		}

		return FunctionCallPart{FunctionCall: *w.FunctionCall}, nil
	case partTypeFunctionResponse:
		if w.FunctionResponse == nil {
			return nil, fmt.Errorf("function_response part without payload")
		}

		return FunctionResponsePart{FunctionResponse: *w.FunctionResponse}, nil
	default:
		return nil, fmt.Errorf("unknown part type %q", w.Type)
	}
}
