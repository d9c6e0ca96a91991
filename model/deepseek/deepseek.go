// Package deepseek provides a preset of the OpenAI adapter for the
// OpenAI-compatible DeepSeek chat API.
package deepseek

import (
	"os"

	"github.com/hupe1980/agentgraph/model/openai"
)

const (
	// DefaultBaseURL is the DeepSeek API endpoint.
	DefaultBaseURL = "https://api.deepseek.com"
	// DefaultModel is the general chat model.
	DefaultModel = "deepseek-chat"
	// ReasonerModel is the reasoning model.
	ReasonerModel = "deepseek-reasoner"
)

// Options configure the DeepSeek model.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string // defaults to $DEEPSEEK_API_KEY
	BaseURL     string
}

// NewModel returns an OpenAI adapter pointed at DeepSeek.
func NewModel(optFns ...func(o *Options)) *openai.Model {
	opts := Options{
		Model:       DefaultModel,
		Temperature: 0.7,
		MaxTokens:   1000,
		BaseURL:     DefaultBaseURL,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}

	return openai.NewModel(func(o *openai.Options) {
		o.Model = opts.Model
		o.Temperature = opts.Temperature
		o.MaxCompletionTokens = opts.MaxTokens
		o.LegacyMaxTokens = true
		o.APIKey = opts.APIKey
		o.BaseURL = opts.BaseURL
		o.Provider = "deepseek"
	})
}
