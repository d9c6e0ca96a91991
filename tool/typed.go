package tool

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/internal/util"
)

// NewTypedTool builds a FunctionTool whose schema is reflected from T and
// whose arguments are decoded into a T before fn runs. Defaults declared in
// jsonschema tags are not applied; use zero-value checks in fn.
//
//	type WeatherArgs struct {
//	  City string `json:"city" jsonschema_description:"City name"`
//	  Days int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=7"`
//	}
//
//	weather := NewTypedTool("weather_query", "Forecast for a city",
//	  func(tc *core.ToolContext, a WeatherArgs) (any, error) { ... })
func NewTypedTool[T any](name, description string, fn func(toolCtx *core.ToolContext, args T) (any, error)) *FunctionTool {
	var zero T

	return NewFunctionTool(name, description, util.CreateSchema(zero), func(tc *core.ToolContext, raw map[string]any) (any, error) {
		args, err := DecodeArgs[T](raw)
		if err != nil {
			return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeInvalidArguments}
		}

		return fn(tc, args)
	})
}

// DecodeArgs converts a decoded argument map into T.
func DecodeArgs[T any](raw map[string]any) (T, error) {
	var out T

	b, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("encode arguments: %w", err)
	}

	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode arguments: %w", err)
	}

	return out, nil
}
