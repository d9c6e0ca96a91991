package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/checkpoint/natskv"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	anthropicmodel "github.com/hupe1980/agentgraph/model/anthropic"
	"github.com/hupe1980/agentgraph/model/deepseek"
	openaimodel "github.com/hupe1980/agentgraph/model/openai"
	"github.com/hupe1980/agentgraph/tools"
)

// NewModel builds the configured chat model. The selected provider must have
// an API key.
func (c Config) NewModel() (model.Model, error) {
	m := c.Model

	switch strings.ToLower(m.Provider) {
	case ProviderDeepSeek, "":
		if c.APIKeys.DeepSeek == "" {
			return nil, fmt.Errorf("%w: set DEEPSEEK_API_KEY", ErrMissingAPIKey)
		}

		return deepseek.NewModel(func(o *deepseek.Options) {
			o.APIKey = c.APIKeys.DeepSeek
			o.Temperature = m.Temperature
			o.MaxTokens = m.MaxTokens

			if m.Name != "" {
				o.Model = m.Name
			}

			if m.BaseURL != "" {
				o.BaseURL = m.BaseURL
			}
		}), nil
	case ProviderOpenAI:
		if c.APIKeys.OpenAI == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
		}

		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.APIKey = c.APIKeys.OpenAI
			o.Temperature = m.Temperature
			o.MaxCompletionTokens = m.MaxTokens
			o.BaseURL = m.BaseURL

			if m.Name != "" {
				o.Model = m.Name
			}
		}), nil
	case ProviderAnthropic:
		if c.APIKeys.Anthropic == "" {
			return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}

		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = c.APIKeys.Anthropic
			o.Temperature = m.Temperature
			o.MaxTokens = m.MaxTokens

			if m.Name != "" {
				o.Model = anthropic.Model(m.Name)
			}
		}), nil
	default:
		return nil, fmt.Errorf("config: unknown model provider %q", m.Provider)
	}
}

// NewCheckpointer builds the configured saver. The returned close function
// releases its connection and is never nil.
func (c Config) NewCheckpointer(ctx context.Context, logger logging.Logger) (checkpoint.Saver, func() error, error) {
	switch strings.ToLower(c.Checkpointer.Kind) {
	case CheckpointerMemory, "":
		return checkpoint.NewMemorySaver(), func() error { return nil }, nil
	case CheckpointerNATS:
		s, err := natskv.Connect(ctx, c.Checkpointer.NATSURL, func(o *natskv.Options) {
			if c.Checkpointer.Bucket != "" {
				o.Bucket = c.Checkpointer.Bucket
			}

			o.TTL = c.Checkpointer.TTL
			o.Logger = logger
		})
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("config: unknown checkpointer %q", c.Checkpointer.Kind)
	}
}

// NewLogger builds the process logger and installs it as the slog default.
func (c Config) NewLogger() *logging.AgentLogger {
	level := logging.ParseLevel(c.Log.Level)
	logging.SetDefault(c.Log.Format, level)

	return logging.NewSlogLogger(level, c.Log.Format, false)
}

// ToolOptions passes tool credentials to the tools catalog.
func (c Config) ToolOptions() func(o *tools.Options) {
	return func(o *tools.Options) { o.SerpAPIKey = c.APIKeys.SerpAPI }
}
