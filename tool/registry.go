package tool

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hupe1980/agentgraph/model"
)

// Registry holds tools by name, preserving registration order so model
// requests list tools deterministically.
type Registry struct {
	tools *orderedmap.OrderedMap[string, Tool]
}

// NewRegistry creates a registry containing tools. Duplicate names are an error.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: orderedmap.New[string, Tool]()}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}

	return r
}

// Register adds t. Names must be unique and non-empty.
func (r *Registry) Register(t Tool) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("tool: cannot register unnamed tool")
	}

	if _, exists := r.tools.Get(t.Name()); exists {
		return fmt.Errorf("tool: %q already registered", t.Name())
	}

	r.tools.Set(t.Name(), t)

	return nil
}

// Get returns the tool called name.
func (r *Registry) Get(name string) (Tool, bool) {
	return r.tools.Get(name)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return r.tools.Len() }

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// Definitions returns model declarations for every tool.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		defs = append(defs, Definition(pair.Value))
	}

	return defs
}

// Description is the human readable summary of one tool.
type Description struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	ArgsSchema  map[string]any `json:"args_schema" yaml:"args_schema"`
}

// Descriptions returns name, description and argument schema of every tool
// keyed by name, in registration order.
func (r *Registry) Descriptions() *orderedmap.OrderedMap[string, Description] {
	out := orderedmap.New[string, Description]()
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, Description{
			Name:        pair.Value.Name(),
			Description: pair.Value.Description(),
			ArgsSchema:  pair.Value.Parameters(),
		})
	}

	return out
}
