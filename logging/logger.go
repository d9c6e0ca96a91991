package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a LogLevel. Unknown names
// fall back to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface used across the module.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Format names accepted by LoggerConfig.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// LoggerConfig configures construction of an AgentLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json, text or console
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a baseline console info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: FormatConsole, Output: os.Stderr}
}

// AgentLogger wraps slog.Logger adding contextual cloning helpers and
// domain convenience methods. With* methods return copies.
type AgentLogger struct {
	logger    *slog.Logger
	component string
	threadID  string
	runID     string
	attrs     []slog.Attr
}

// NewLogger builds an AgentLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *AgentLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	return &AgentLogger{
		logger:    slog.New(NewHandler(out, cfg.Format, cfg.Level, cfg.AddSource)),
		component: cfg.Component,
	}
}

// NewHandler returns a slog.Handler for the given format. The console format
// renders through a zerolog ConsoleWriter.
func NewHandler(out io.Writer, format string, level LogLevel, addSource bool) slog.Handler {
	switch format {
	case FormatText:
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel(level), AddSource: addSource})
	case FormatJSON:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel(level), AddSource: addSource})
	default:
		zl := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Stamp}).With().Timestamp().Logger()
		return zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: slogLevel(level)})
	}
}

// SetDefault installs a handler for the given format as the process-wide slog default.
func SetDefault(format string, level LogLevel) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, format, level, false)))
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *AgentLogger) clone() *AgentLogger {
	nl := *l
	nl.attrs = append([]slog.Attr(nil), l.attrs...)

	return &nl
}

// With adds a key/value attribute attached to every subsequent entry.
func (l *AgentLogger) With(key string, value any) *AgentLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.Any(key, value))

	return nl
}

// WithComponent sets the logical component (graph, tool, model, ...).
func (l *AgentLogger) WithComponent(c string) *AgentLogger {
	nl := l.clone()
	nl.component = c

	return nl
}

// WithThread attaches thread and run identifiers.
func (l *AgentLogger) WithThread(threadID, runID string) *AgentLogger {
	nl := l.clone()
	nl.threadID = threadID
	nl.runID = runID

	return nl
}

func (l *AgentLogger) buildAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.attrs)+3+len(args)/2)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}

	if l.threadID != "" {
		attrs = append(attrs, slog.String("thread_id", l.threadID))
	}

	if l.runID != "" {
		attrs = append(attrs, slog.String("run_id", l.runID))
	}

	attrs = append(attrs, l.attrs...)

	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			attrs = append(attrs, a)
		case string:
			if i+1 < len(args) {
				attrs = append(attrs, slog.Any(a, args[i+1]))
				i++
			} else {
				attrs = append(attrs, slog.String("!BADKEY", a))
			}
		default:
			attrs = append(attrs, slog.Any("!BADKEY", a))
		}
	}

	return attrs
}

func (l *AgentLogger) log(level slog.Level, msg string, args ...any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}

	l.logger.LogAttrs(context.Background(), level, msg, l.buildAttrs(args)...)
}

// Debug logs at debug level.
func (l *AgentLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *AgentLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *AgentLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *AgentLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogToolCall records execution details for a tool invocation.
func (l *AgentLogger) LogToolCall(tool string, dur time.Duration, err error) {
	args := []any{"tool_name", tool, "duration", dur, "success", err == nil}
	if err != nil {
		l.Error("tool.call.failed", append(args, "error", err.Error())...)
		return
	}

	l.Info("tool.call.completed", args...)
}

// LogModelCall records model call latency, token usage and outcome.
func (l *AgentLogger) LogModelCall(model string, tokens int, dur time.Duration, err error) {
	args := []any{"model", model, "token_count", tokens, "duration", dur, "success", err == nil}
	if err != nil {
		l.Error("model.call.failed", append(args, "error", err.Error())...)
		return
	}

	l.Info("model.call.completed", args...)
}

// LogStep records one superstep of a graph run.
func (l *AgentLogger) LogStep(graph string, step int, nodes []string, dur time.Duration) {
	l.Debug("graph.step.completed", "graph", graph, "step", step, "nodes", nodes, "duration", dur)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *AgentLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Info("operation.completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}

	return l
}

// NewSlogLogger creates a new AgentLogger with the specified level and format.
func NewSlogLogger(level LogLevel, format string, addSource bool) *AgentLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level

	if format != "" {
		cfg.Format = format
	}

	cfg.AddSource = addSource

	return NewLogger(cfg)
}
