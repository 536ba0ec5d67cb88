// Package llmpipe bridges line-delimited prompts on stdin to a hosted LLM and
// writes one normalized answer line per prompt.
package llmpipe

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Match modes for the multiple-choice normalizer.
const (
	MatchSubstring = "substring"
	MatchToken     = "token"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultMaxTokens   = 10
)

// Config describes the remote completion call and answer normalization.
type Config struct {
	Provider          string        `json:"provider"                      mapstructure:"provider"            validate:"required,oneof=openai gemini"`
	Model             string        `json:"model,omitempty"               mapstructure:"model"`
	APIKey            string        `json:"-"                             mapstructure:"api_key"`
	BaseURL           string        `json:"base_url,omitempty"            mapstructure:"base_url"            validate:"omitempty,url"`
	MaxTokens         int           `json:"max_tokens"                    mapstructure:"max_tokens"          validate:"min=1,max=4096"`
	Temperature       float64       `json:"temperature"                   mapstructure:"temperature"         validate:"min=0,max=2"`
	Timeout           time.Duration `json:"timeout,omitempty"             mapstructure:"timeout"             validate:"min=0"`
	RequestsPerMinute int           `json:"requests_per_minute,omitempty" mapstructure:"requests_per_minute" validate:"min=0,max=10000"`
	Match             string        `json:"match"                         mapstructure:"match"               validate:"required,oneof=substring token"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOpenAI,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0,
		Match:       MatchSubstring,
	}
}

// Validate checks field constraints. The API key is checked by NewCompleter.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// ModelOrDefault returns the configured model or the provider default.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}

	if c.Provider == ProviderGemini {
		return defaultGeminiModel
	}

	return defaultOpenAIModel
}
