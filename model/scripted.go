package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentgraph/core"
)

// ScriptedModel replays queued responses in order and records every request.
// It is meant for tests and offline examples.
type ScriptedModel struct {
	info Info

	mu       sync.Mutex
	script   []core.Content
	requests []Request
	fallback func(req Request) core.Content
}

// NewScriptedModel returns a ScriptedModel that replays replies.
func NewScriptedModel(replies ...core.Content) *ScriptedModel {
	return &ScriptedModel{
		info:   Info{Name: "scripted", Provider: "local", SupportsTools: true},
		script: replies,
	}
}

// Reply queues a plain text answer.
func (m *ScriptedModel) Reply(text string) *ScriptedModel {
	return m.Push(core.NewAssistantMessage(text))
}

// CallTool queues an answer requesting a single tool call.
func (m *ScriptedModel) CallTool(id, name, args string) *ScriptedModel {
	return m.Push(core.NewAssistantMessage("", core.FunctionCall{ID: id, Name: name, Arguments: args}))
}

// Push queues arbitrary replies.
func (m *ScriptedModel) Push(replies ...core.Content) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.script = append(m.script, replies...)

	return m
}

// WithFallback sets a generator used once the script is exhausted.
func (m *ScriptedModel) WithFallback(fn func(req Request) core.Content) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fallback = fn

	return m
}

// Requests returns a copy of the recorded requests.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Request(nil), m.requests...)
}

// Generate implements Model. Streaming requests receive the reply text rune
// by rune before the final response.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)

	var (
		reply core.Content
		ok    bool
	)

	if len(m.script) > 0 {
		reply, m.script, ok = m.script[0], m.script[1:], true
	} else if m.fallback != nil {
		reply, ok = m.fallback(req), true
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if !ok {
			errCh <- fmt.Errorf("scripted model: no reply left for request %d", len(m.Requests()))
			return
		}

		if reply.Role == "" {
			reply.Role = core.RoleAssistant
		}

		if req.Stream {
			for _, r := range reply.Text() {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Content: core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: string(r)}}}}:
				}
			}
		}

		finish := "stop"
		if reply.HasFunctionCalls() {
			finish = "tool_calls"
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Content: reply, FinishReason: finish}:
		}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }
