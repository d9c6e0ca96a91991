package tools

import (
	"fmt"

	"github.com/lestrrat-go/strftime"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

const dateTimeLayout = "%Y-%m-%d %H:%M:%S"

// DateTimeArgs are the arguments of datetime_query.
type DateTimeArgs struct {
	QueryType    string  `json:"query_type" jsonschema_description:"One of 'current' (current time), 'format' (format the current time), 'calculate' (shift by days_offset)"`
	FormatString *string `json:"format_string,omitempty" jsonschema_description:"strftime format string, e.g. '%Y-%m-%d %H:%M:%S'"`
	DaysOffset   *int    `json:"days_offset,omitempty" jsonschema_description:"Day offset; positive is the future, negative the past"`
}

// NewDateTimeTool returns datetime_query.
func NewDateTimeTool(optFns ...func(o *Options)) *tool.FunctionTool {
	opts := resolve(optFns)

	return tool.NewTypedTool("datetime_query", "Query the current date and time, format it or compute a date offset.",
		func(_ *core.ToolContext, args DateTimeArgs) (any, error) {
			now := opts.Now()

			switch args.QueryType {
			case "current":
				s, err := strftime.Format(dateTimeLayout, now)
				if err != nil {
					return nil, err
				}

				return "Current time: " + s, nil
			case "format":
				if args.FormatString == nil || *args.FormatString == "" {
					return "Please provide a format string", nil
				}

				s, err := strftime.Format(*args.FormatString, now)
				if err != nil {
					return fmt.Sprintf("Format error: %v", err), nil
				}

				return "Formatted time: " + s, nil
			case "calculate":
				if args.DaysOffset == nil {
					return "Please provide a days offset", nil
				}

				s, err := strftime.Format(dateTimeLayout, now.AddDate(0, 0, *args.DaysOffset))
				if err != nil {
					return nil, err
				}

				return "Calculated time: " + s, nil
			default:
				return "Unsupported query type", nil
			}
		})
}
