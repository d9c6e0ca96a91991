package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

// TextArgs are the arguments of text_processor.
type TextArgs struct {
	Text      string `json:"text" jsonschema_description:"Text to process"`
	Operation string `json:"operation" jsonschema_description:"One of 'count', 'upper', 'lower', 'reverse', 'split'"`
	Separator string `json:"separator,omitempty" jsonschema_description:"Separator used by split, defaults to a single space"`
}

// NewTextProcessorTool returns text_processor.
func NewTextProcessorTool() *tool.FunctionTool {
	return tool.NewTypedTool("text_processor", "Count, change case, reverse or split a piece of text.",
		func(_ *core.ToolContext, args TextArgs) (any, error) {
			return ProcessText(args.Text, args.Operation, args.Separator), nil
		})
}

// ProcessText applies operation to text. An empty separator means a single space.
func ProcessText(text, operation, separator string) string {
	switch operation {
	case "count":
		return fmt.Sprintf("Text statistics:\nCharacters: %d\nWords: %d\nLines: %d",
			utf8.RuneCountInString(text), len(strings.Fields(text)), countLines(text))
	case "upper":
		return "Uppercase: " + strings.ToUpper(text)
	case "lower":
		return "Lowercase: " + strings.ToLower(text)
	case "reverse":
		r := []rune(text)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}

		return "Reversed: " + string(r)
	case "split":
		if separator == "" {
			separator = " "
		}

		b, _ := json.Marshal(strings.Split(text, separator))

		return "Split result: " + string(b)
	default:
		return "Unsupported operation"
	}
}

func countLines(text string) int {
	if text == "" {
		return 0
	}

	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}

	return n
}
