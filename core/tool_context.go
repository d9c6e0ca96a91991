package core

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/agentgraph/logging"
)

// ToolContext provides a constrained surface for tool implementations invoked
// by a graph node. It exposes the run context, the thread the call belongs to
// and the originating function call id, and stages key/value notes that the
// caller may attach to the resulting tool message.
type ToolContext struct {
	ctx            context.Context
	threadID       string
	functionCallID string

	mu    sync.Mutex
	notes map[string]any

	*loggerAdapter
}

// ToolContextOptions configures NewToolContext.
type ToolContextOptions struct {
	ThreadID string
	Logger   logging.Logger
}

// NewToolContext constructs a tool context bound to ctx and a function call id.
func NewToolContext(ctx context.Context, functionCallID string, optFns ...func(o *ToolContextOptions)) *ToolContext {
	opts := ToolContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &ToolContext{
		ctx:            ctx,
		threadID:       opts.ThreadID,
		functionCallID: functionCallID,
		loggerAdapter:  newLoggerAdapter(opts.Logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// ThreadID returns the conversation thread of the invocation, if any.
func (tc *ToolContext) ThreadID() string { return tc.threadID }

// FunctionCallID returns the function call id associated with the invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// SetNote stages a key/value note for the caller.
func (tc *ToolContext) SetNote(k string, v any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.notes == nil {
		tc.notes = map[string]any{}
	}

	tc.notes[k] = v
}

// Notes returns a copy of the staged notes.
func (tc *ToolContext) Notes() map[string]any {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	out := make(map[string]any, len(tc.notes))
	for k, v := range tc.notes {
		out[k] = v
	}

	return out
}

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc == nil || tc.ctx == nil {
		return errors.New("invalid ToolContext: missing context")
	}

	if tc.functionCallID == "" {
		return errors.New("invalid ToolContext: missing function call id")
	}

	return nil
}
