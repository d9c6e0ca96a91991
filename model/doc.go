// Package model defines the provider-agnostic abstractions for talking to
// chat models.
//
// Providers (openai, anthropic, deepseek) implement Model so graph nodes stay
// decoupled from vendor SDKs. Generation is exposed as a pair of channels:
// partial chunks followed by one final Response, or an error. Collect drains
// a generation for callers that only need the final message.
//
// ScriptedModel replays canned replies (including tool calls) for tests and
// offline examples.
package model
