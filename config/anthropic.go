package config

import (
	"os"

	"github.com/rs/zerolog"

	llmanthropic "github.com/jmontane/switchyard/llm/anthropic"
)

// LoadAnthropicConfig loads Anthropic configuration from the config.
// It returns the API key and model to use for creating an Anthropic client.
func LoadAnthropicConfig(cfg *Config) (apiKey, model string) {
	if cfg != nil {
		apiKey = cfg.Anthropic.APIKey
		model = cfg.Anthropic.Model
	}

	if envAPIKey := os.Getenv("ANTHROPIC_API_KEY"); envAPIKey != "" {
		apiKey = envAPIKey
	}

	return apiKey, model
}

// NewAnthropicClient creates a new Anthropic LLM client from the configuration.
func NewAnthropicClient(cfg *Config, logger zerolog.Logger) (*llmanthropic.AnthropicClient, error) {
	apiKey, model := LoadAnthropicConfig(cfg)
	return llmanthropic.NewAnthropicClient(apiKey, model, logger)
}
