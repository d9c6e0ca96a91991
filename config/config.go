// Package config loads process settings for the example programs: an
// optional YAML file, .env files and environment variables, in increasing
// order of precedence. It also turns settings into models, checkpointers and loggers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Providers understood by NewModel.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Checkpointer kinds understood by NewCheckpointer.
const (
	CheckpointerMemory = "memory"
	CheckpointerNATS   = "nats"
)

// ErrMissingAPIKey is returned when the selected provider has no API key.
var ErrMissingAPIKey = errors.New("config: missing API key")

// ModelConfig selects and tunes the chat model.
type ModelConfig struct {
	Provider string `yaml:"provider"`
	// Name overrides the provider's default model (deepseek-chat,
	// gpt-4o-mini, the Anthropic adapter default).
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
	BaseURL     string  `yaml:"base_url"`
}

// APIKeys holds provider credentials.
type APIKeys struct {
	DeepSeek  string `yaml:"deepseek"`
	OpenAI    string `yaml:"openai"`
	Anthropic string `yaml:"anthropic"`
	SerpAPI   string `yaml:"serpapi"`
}

// CheckpointerConfig selects the conversation store.
type CheckpointerConfig struct {
	Kind    string        `yaml:"kind"`
	NATSURL string        `yaml:"nats_url"`
	Bucket  string        `yaml:"bucket"`
	TTL     time.Duration `yaml:"ttl"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete process configuration.
type Config struct {
	Model        ModelConfig        `yaml:"model"`
	APIKeys      APIKeys            `yaml:"api_keys"`
	Checkpointer CheckpointerConfig `yaml:"checkpointer"`
	Log          LogConfig          `yaml:"log"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Provider:    ProviderDeepSeek,
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Checkpointer: CheckpointerConfig{Kind: CheckpointerMemory},
		Log:          LogConfig{Level: "info", Format: "console"},
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	// EnvFiles are dotenv files read in order; missing files are ignored.
	EnvFiles []string
	// File is an optional YAML file; empty skips it.
	File string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load builds a Config from defaults, YAML, .env and the environment.
func Load(optFns ...func(o *LoadOptions)) (Config, error) {
	opts := LoadOptions{EnvFiles: []string{".env"}, LookupEnv: os.LookupEnv}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := Default()

	if opts.File != "" {
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", opts.File, err)
		}

		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", opts.File, err)
		}
	}

	dotenv := map[string]string{}

	for _, f := range opts.EnvFiles {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", f, err)
		}

		for k, v := range vals {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok {
			return v, true
		}

		v, ok := dotenv[key]

		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("MODEL_PROVIDER", &c.Model.Provider)
	str("MODEL_NAME", &c.Model.Name)
	str("MODEL_BASE_URL", &c.Model.BaseURL)
	str("DEEPSEEK_API_KEY", &c.APIKeys.DeepSeek)
	str("OPENAI_API_KEY", &c.APIKeys.OpenAI)
	str("ANTHROPIC_API_KEY", &c.APIKeys.Anthropic)
	str("SERPAPI_API_KEY", &c.APIKeys.SerpAPI)
	str("CHECKPOINTER", &c.Checkpointer.Kind)
	str("NATS_URL", &c.Checkpointer.NATSURL)
	str("NATS_BUCKET", &c.Checkpointer.Bucket)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: TEMPERATURE: %w", err)
		}

		c.Model.Temperature = f
	}

	if v, ok := lookup("MAX_TOKENS"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: MAX_TOKENS: %w", err)
		}

		c.Model.MaxTokens = n
	}

	if v, ok := lookup("NATS_TTL"); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: NATS_TTL: %w", err)
		}

		c.Checkpointer.TTL = d
	}

	return nil
}
