package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
)

func TestBuildMessagesPlacesToolResults(t *testing.T) {
	req := model.Request{
		Instructions: "be brief",
		Contents: []core.Content{
			core.NewUserMessage("weather?"),
			core.NewAssistantMessage("", core.FunctionCall{ID: "c1", Name: "weather_query", Arguments: `{"city":"Paris"}`}),
			core.NewToolMessage("c1", "weather_query", map[string]any{"city": "Paris"}, nil),
			core.NewAssistantMessage("sunny"),
		},
	}

	msgs := BuildMessages(req)
	require.Len(t, msgs, 5)

	require.NotNil(t, msgs[0].OfSystem)
	require.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "weather_query", msgs[2].OfAssistant.ToolCalls[0].Function.Name)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "c1", msgs[3].OfTool.ToolCallID)
	require.NotNil(t, msgs[4].OfAssistant)
}

func TestInfoDefaults(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	info := m.Info()
	assert.Equal(t, "openai", info.Provider)
	assert.Equal(t, "gpt-4o-mini", info.Name)
	assert.True(t, info.SupportsTools)
}

func TestBuildParamsTokenField(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.LegacyMaxTokens = true
		o.MaxCompletionTokens = 256
	})

	params := m.buildParams(model.Request{Tools: []model.ToolDefinition{{
		Type:     "function",
		Function: model.FunctionDefinition{Name: "calculator", Parameters: map[string]any{"type": "object"}},
	}}}, nil)

	assert.Equal(t, int64(256), params.MaxTokens.Value)
	assert.False(t, params.MaxCompletionTokens.Valid())
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "calculator", params.Tools[0].Function.Name)
}

func TestStreamingStopsWhenConsumerCancels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")

		for i := range 200 {
			fmt.Fprintf(w, "data: {\"id\":\"c%d\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"a\"}}]}\n\n", i)
		}

		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL
	})

	ctx, cancel := context.WithCancel(context.Background())
	out, errCh := m.Generate(ctx, model.Request{Contents: []core.Content{core.NewUserMessage("hi")}, Stream: true})

	first := <-out
	assert.True(t, first.Partial)
	cancel()

	// out is never drained again; the producer must still finish
	done := make(chan struct{})

	go func() {
		for range errCh {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("generation goroutine blocked after cancellation")
	}
}
