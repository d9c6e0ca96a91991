package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestAgentLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: FormatJSON, Output: &buf, Component: "graph"})
	l.WithThread("t-1", "r-1").With("graph", "chat").Info("graph.node.start", "node", "chatbot")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"msg":"graph.node.start"`)
	assert.Contains(t, out, `"component":"graph"`)
	assert.Contains(t, out, `"thread_id":"t-1"`)
	assert.Contains(t, out, `"run_id":"r-1"`)
	assert.Contains(t, out, `"node":"chatbot"`)
}

func TestAgentLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: FormatText, Output: &buf})
	l.Info("ignored")
	assert.Empty(t, buf.String())

	l.LogToolCall("calculator", time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), "tool.call.failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: FormatConsole, Output: &buf})
	l.Info("model.call.completed", "model", "deepseek-chat")

	assert.Contains(t, buf.String(), "model.call.completed")
	assert.Contains(t, buf.String(), "deepseek-chat")
}

func TestOrNoOp(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, OrNoOp(nil))

	l := NewDefaultSlogLogger()
	assert.Same(t, l, OrNoOp(l))
}
