package tools

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

// RandomArgs are the arguments of random_generator.
type RandomArgs struct {
	Type     string   `json:"type" jsonschema_description:"One of 'int', 'float', 'choice', 'uuid'"`
	MinValue *int     `json:"min_value,omitempty" jsonschema:"default=1" jsonschema_description:"Lower bound for int and float"`
	MaxValue *int     `json:"max_value,omitempty" jsonschema:"default=100" jsonschema_description:"Upper bound for int and float"`
	Choices  []string `json:"choices,omitempty" jsonschema_description:"Candidates for choice"`
}

// NewRandomTool returns random_generator.
func NewRandomTool(optFns ...func(o *Options)) *tool.FunctionTool {
	opts := resolve(optFns)

	return tool.NewTypedTool("random_generator", "Generate a random integer, float, choice or UUID.",
		func(_ *core.ToolContext, args RandomArgs) (any, error) {
			lo, hi := 1, 100
			if args.MinValue != nil {
				lo = *args.MinValue
			}

			if args.MaxValue != nil {
				hi = *args.MaxValue
			}

			switch args.Type {
			case "int":
				if lo > hi {
					return "min_value must not exceed max_value", nil
				}

				return fmt.Sprintf("Random integer: %d", randomInt(opts.Rand, lo, hi)), nil
			case "float":
				if lo > hi {
					return "min_value must not exceed max_value", nil
				}

				return fmt.Sprintf("Random float: %.2f", float64(lo)+opts.Rand.Float64()*(float64(hi)-float64(lo))), nil
			case "choice":
				if len(args.Choices) == 0 {
					return "Please provide a list of choices", nil
				}

				return "Random choice: " + args.Choices[opts.Rand.IntN(len(args.Choices))], nil
			case "uuid":
				return "UUID: " + uuid.NewString(), nil
			default:
				return "Unsupported random type", nil
			}
		})
}

// randomInt draws uniformly from [lo, hi]. The span is unsigned so the full
// int range does not overflow.
func randomInt(r Rand, lo, hi int) int {
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int(r.Uint64())
	}

	return int(uint64(lo) + r.Uint64N(span+1))
}
