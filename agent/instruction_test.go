package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(context.Context, graph.MessagesState) (string, error) {
	return m.text, m.err
}

func testState() graph.MessagesState {
	return *graph.Messages(core.NewUserMessage("hello"))
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	if !inst.IsStatic() {
		t.Fatalf("expected static instruction")
	}

	got, err := inst.Resolve(context.Background(), testState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "static instruction" {
		t.Fatalf("expected 'static instruction', got %q", got)
	}
}

func TestInstruction_Template(t *testing.T) {
	inst := NewInstructionFromTemplate("You are {{ .name }}, reply in {{ .lang | upper }}.", map[string]any{"name": "Ava", "lang": "en"})

	got, err := inst.Resolve(context.Background(), testState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "You are Ava, reply in EN." {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestInstruction_NewInstructionFromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(_ context.Context, s graph.MessagesState) (string, error) {
		last, _ := core.LastMessage(s.Messages)
		return "answer: " + last.Text(), nil
	})
	if inst.IsStatic() {
		t.Fatalf("expected dynamic instruction")
	}

	got, err := inst.PromptFunc()(context.Background(), testState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "answer: hello" {
		t.Fatalf("expected 'answer: hello', got %q", got)
	}
}

func TestInstruction_NewInstructionFromProvider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "provider text"})
	if inst.IsStatic() || inst.IsZero() {
		t.Fatalf("expected dynamic instruction")
	}

	got, err := inst.Resolve(context.Background(), testState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "provider text" {
		t.Fatalf("expected 'provider text', got %q", got)
	}
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	expectedErr := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: expectedErr})

	_, err := inst.Resolve(context.Background(), testState())
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstruction_Zero(t *testing.T) {
	if !(Instruction{}).IsZero() {
		t.Fatalf("expected zero instruction")
	}
}
