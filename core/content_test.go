package core

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hi")
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "hi", u.Text())
	assert.False(t, u.HasFunctionCalls())

	a := NewAssistantMessage("", FunctionCall{ID: "c1", Name: "calculator", Arguments: `{"expression":"1+1"}`})
	assert.Equal(t, RoleAssistant, a.Role)
	assert.Empty(t, a.Text())
	require.True(t, a.HasFunctionCalls())
	assert.Equal(t, "calculator", a.FunctionCalls()[0].Name)

	ok := NewToolMessage("c1", "calculator", "Result: 1+1 = 2", nil)
	assert.Equal(t, RoleTool, ok.Role)
	require.Len(t, ok.FunctionResponses(), 1)
	assert.Equal(t, "Result: 1+1 = 2", ok.FunctionResponses()[0].String())

	failed := NewToolMessage("c2", "calculator", "ignored", errors.New("boom"))
	fr := failed.FunctionResponses()[0]
	assert.Nil(t, fr.Response)
	assert.Equal(t, "Error: boom", fr.String())
}

func TestFunctionResponseStringEncodesStructs(t *testing.T) {
	fr := FunctionResponse{Name: "weather_query", Response: map[string]any{"city": "Beijing"}}
	assert.JSONEq(t, `{"city":"Beijing"}`, fr.String())
}

func TestContentJSONPreservesPartKinds(t *testing.T) {
	in := Content{
		ID:   "m1",
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "checking"},
			DataPart{Data: map[string]any{"k": "v"}},
			FunctionCallPart{FunctionCall: FunctionCall{ID: "c1", Name: "weather_query", Arguments: `{"city":"Paris"}`}},
			FunctionResponsePart{FunctionResponse: FunctionResponse{ID: "c1", Name: "weather_query", Response: "sunny"}},
		},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Content
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, in, out)
}

func TestContentJSONRejectsUnknownPart(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"video"}]}`), &c)
	assert.Error(t, err)
}

func TestLastMessage(t *testing.T) {
	_, ok := LastMessage(nil)
	assert.False(t, ok)

	m, ok := LastMessage([]Content{NewUserMessage("a"), NewUserMessage("b")})
	require.True(t, ok)
	assert.Equal(t, "b", m.Text())
}
