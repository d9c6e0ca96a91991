// Package logging provides a tiny abstraction over slog so graph, tool and
// model code can depend on a minimal interface (Logger) while callers plug in
// any structured logger.
//
// Three handler formats are available: json and text (slog built-ins) and
// console, which renders through a zerolog ConsoleWriter for interactive use.
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, logging.FormatConsole, false)
//	g, _ := builder.Compile(func(o *graph.CompileOptions) { o.Logger = logger })
//
// NoOpLogger is the default everywhere a logger is optional.
package logging
