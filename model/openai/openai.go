// Package openai implements model.Model on the OpenAI Chat Completions API,
// including streaming and tool calling. Any OpenAI-compatible endpoint can be
// targeted through Options.BaseURL.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
)

// Options configure the adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// LegacyMaxTokens sends max_tokens instead of max_completion_tokens for
	// compatible endpoints that only understand the older field.
	LegacyMaxTokens bool
	APIKey          string
	BaseURL         string
	// Provider is reported by Info.
	Provider string
}

// Model wraps the Chat Completions API behind model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1000,
		Provider:            "openai",
	}
}

// NewModel creates a model with a client built from Options (APIKey and
// BaseURL fall back to the SDK's environment defaults).
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req, BuildMessages(req))

		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}

		m.handleNonStreaming(ctx, params, out, errCh)
	}()

	return out, errCh
}

// BuildMessages converts a normalized request into chat messages. Tool
// results are placed right after the assistant message that requested them;
// results whose call is not in the history are appended at the end.
func BuildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	toolResponses := map[string]string{}
	var order []string

	for _, c := range req.Contents {
		for _, fr := range c.FunctionResponses() {
			if fr.ID == "" {
				continue
			}

			if _, seen := toolResponses[fr.ID]; seen {
				continue
			}

			toolResponses[fr.ID] = fr.String()
			order = append(order, fr.ID)
		}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Contents)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}

	for _, c := range req.Contents {
		text := c.Text()

		switch c.Role {
		case core.RoleTool:
			continue
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(text))
		case core.RoleAssistant:
			calls := c.FunctionCalls()
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}

			msg := openai.ChatCompletionAssistantMessageParam{ToolCalls: toToolCallParams(calls)}
			if text != "" {
				msg.Content.OfString = openai.String(text)
			}

			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &msg})

			for _, fc := range calls {
				if resp, ok := toolResponses[fc.ID]; ok {
					messages = append(messages, openai.ToolMessage(resp, fc.ID))
					delete(toolResponses, fc.ID)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}

	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}

	return messages
}

func toToolCallParams(calls []core.FunctionCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))

	for _, fc := range calls {
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID: fc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			},
		})
	}

	return out
}

func (m *Model) buildParams(req model.Request, messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       m.opts.Model,
		Temperature: openai.Float(m.opts.Temperature),
	}

	if m.opts.MaxCompletionTokens > 0 {
		if m.opts.LegacyMaxTokens {
			params.MaxTokens = openai.Int(m.opts.MaxCompletionTokens)
		} else {
			params.MaxCompletionTokens = openai.Int(m.opts.MaxCompletionTokens)
		}
	}

	if len(req.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}

	params.Tools = tools

	return params
}

// aggCall accumulates streamed tool call deltas.
type aggCall struct{ id, name, args string }

func (m *Model) handleStreaming(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response, errCh chan<- error) {
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		text    strings.Builder
		calls   = map[int64]*aggCall{}
		finish  string
		usage   *model.TokenUsage
		chunkID string
	)

	for stream.Next() {
		ck := stream.Current()
		chunkID = ck.ID

		if ck.Usage.TotalTokens > 0 {
			usage = toUsage(ck.Usage)
		}

		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				partial := model.Response{ID: ck.ID, Partial: true, Content: core.Content{
					Role:  core.RoleAssistant,
					Parts: []core.Part{core.TextPart{Text: ch.Delta.Content}},
				}}
				if !model.Send(ctx, out, partial) {
					return
				}
			}

			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := calls[tc.Index]
				if !ok {
					ac = &aggCall{}
					calls[tc.Index] = ac
				}

				if tc.ID != "" {
					ac.id = tc.ID
				}

				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}

				ac.args += tc.Function.Arguments
			}

			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
	}

	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
		return
	}

	indices := make([]int64, 0, len(calls))
	for i := range calls {
		indices = append(indices, i)
	}

	sort.Slice(indices, func(a, b int) bool { return indices[a] < indices[b] })

	fcs := make([]core.FunctionCall, 0, len(indices))
	for _, i := range indices {
		ac := calls[i]
		fcs = append(fcs, core.FunctionCall{ID: ac.id, Name: ac.name, Arguments: ac.args})
	}

	model.Send(ctx, out, model.Response{
		ID:           chunkID,
		Content:      core.NewAssistantMessage(text.String(), fcs...),
		FinishReason: finish,
		Usage:        usage,
	})
}

func (m *Model) handleNonStreaming(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response, errCh chan<- error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}

	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("openai api error: no choices returned")
		return
	}

	ch0 := resp.Choices[0]

	fcs := make([]core.FunctionCall, 0, len(ch0.Message.ToolCalls))
	for _, tc := range ch0.Message.ToolCalls {
		fcs = append(fcs, core.FunctionCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}

	model.Send(ctx, out, model.Response{
		ID:           resp.ID,
		Content:      core.NewAssistantMessage(ch0.Message.Content, fcs...),
		FinishReason: ch0.FinishReason,
		Usage:        toUsage(resp.Usage),
	})
}

func toUsage(u openai.CompletionUsage) *model.TokenUsage {
	return &model.TokenUsage{
		PromptTokens:     int(u.PromptTokens),
		CompletionTokens: int(u.CompletionTokens),
		TotalTokens:      int(u.TotalTokens),
	}
}

// Info returns metadata describing this model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: m.opts.Provider, SupportsTools: true}
}
