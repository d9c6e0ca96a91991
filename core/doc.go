// Package core defines the message model shared by graphs, models and tools:
//
//   - Content, a role tagged message made of ordered Parts
//   - FunctionCall / FunctionResponse, the tool dispatch records
//   - ToolContext, the scoped surface handed to tool implementations
//   - ModelLimiter, a per-run cap on model calls
//
// Content marshals to a tagged JSON form so conversation state can be
// checkpointed and restored without losing part types.
package core
