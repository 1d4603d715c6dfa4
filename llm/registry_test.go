package llm

import (
	"testing"
)

func TestProviderRegistry_IsProviderEnabled(t *testing.T) {
	registry := NewProviderRegistry(&ProviderConfig{}, []string{"anthropic", "ollama"})

	if !registry.IsProviderEnabled("anthropic") {
		t.Error("anthropic should be enabled")
	}
	if !registry.IsProviderEnabled("ollama") {
		t.Error("ollama should be enabled")
	}
	if registry.IsProviderEnabled("openai") {
		t.Error("openai should not be enabled")
	}
}

func TestProviderRegistry_IsProviderConfigured(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	// Test Anthropic - should require API key
	registry := NewProviderRegistry(&ProviderConfig{}, []string{"anthropic"})
	if registry.IsProviderConfigured("anthropic") {
		t.Error("anthropic should not be configured without API key")
	}

	registry2 := NewProviderRegistry(&ProviderConfig{AnthropicAPIKey: "test-key"}, []string{"anthropic"})
	if !registry2.IsProviderConfigured("anthropic") {
		t.Error("anthropic should be configured with API key")
	}

	// Test Ollama - should always be configured (no API key required)
	registry3 := NewProviderRegistry(&ProviderConfig{}, []string{"ollama"})
	if !registry3.IsProviderConfigured("ollama") {
		t.Error("ollama should always be configured")
	}

	// Test OpenAI - should require API key
	registry4 := NewProviderRegistry(&ProviderConfig{}, []string{"openai"})
	if registry4.IsProviderConfigured("openai") {
		t.Error("openai should not be configured without API key")
	}

	registry5 := NewProviderRegistry(&ProviderConfig{OpenAIAPIKey: "test-key"}, []string{"openai"})
	if !registry5.IsProviderConfigured("openai") {
		t.Error("openai should be configured with API key")
	}
}

func TestProviderRegistry_Resolve_WithPreferences(t *testing.T) {
	registry := NewProviderRegistry(&ProviderConfig{
		OpenAIAPIKey: "test-key",
		OllamaHost:   "http://localhost:11434",
		OllamaModel:  "mistral:20b",
	}, []string{"openai", "ollama"})

	// First preference should be selected
	key, err := registry.Resolve([]Preference{
		{Provider: ProviderOpenAI, Model: "gpt-4o"},
		{Provider: ProviderOllama, Model: "mistral:20b"},
	})
	if err != nil {
		t.Fatalf("Failed to resolve config: %v", err)
	}

	if key.Provider != ProviderOpenAI {
		t.Errorf("Expected provider 'openai', got '%s'", key.Provider)
	}
	if key.Model != "gpt-4o" {
		t.Errorf("Expected model 'gpt-4o', got '%s'", key.Model)
	}
	if key.APIKey != "test-key" {
		t.Errorf("Expected API key from config, got '%s'", key.APIKey)
	}
}

func TestProviderRegistry_Resolve_WithoutPreferences(t *testing.T) {
	registry := NewProviderRegistry(&ProviderConfig{AnthropicAPIKey: "test-key"}, []string{ProviderAnthropic})

	// Without preferences the first enabled provider and its default model win
	key, err := registry.Resolve(nil)
	if err != nil {
		t.Fatalf("Failed to resolve config: %v", err)
	}

	if key.Provider != "anthropic" {
		t.Errorf("Expected provider 'anthropic' (first enabled), got '%s'", key.Provider)
	}
	if key.Model != "claude-haiku-4-5" {
		t.Errorf("Expected model 'claude-haiku-4-5' (provider default), got '%s'", key.Model)
	}
}

func TestProviderRegistry_Resolve_Fallback(t *testing.T) {
	// Only enable openai, not ollama
	registry := NewProviderRegistry(&ProviderConfig{
		OpenAIAPIKey: "test-key",
		OllamaHost:   "http://localhost:11434",
		OllamaModel:  "mistral:20b",
	}, []string{"openai"})

	// First preference is ollama, but it's not enabled - should fall back
	key, err := registry.Resolve([]Preference{
		{Provider: "ollama", Model: "mistral:20b"},
		{Provider: "openai", Model: "gpt-4o-mini"},
	})
	if err != nil {
		t.Fatalf("Failed to resolve config: %v", err)
	}

	if key.Provider != "openai" {
		t.Errorf("Expected provider 'openai' (fallback), got '%s'", key.Provider)
	}
}

func TestProviderRegistry_Resolve_NoAvailableProvider(t *testing.T) {
	// No providers enabled
	registry := NewProviderRegistry(&ProviderConfig{}, []string{})

	_, err := registry.Resolve(nil)
	if err == nil {
		t.Error("Expected error when no providers are enabled")
	}
}

func TestProviderRegistry_Resolve_OllamaDefaults(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	registry := NewProviderRegistry(&ProviderConfig{OllamaModel: "llama3.2"}, []string{"ollama"})

	key, err := registry.Resolve([]Preference{{Provider: ProviderOllama}})
	if err != nil {
		t.Fatalf("Failed to resolve config: %v", err)
	}

	if key.Host != "http://localhost:11434" {
		t.Errorf("Expected default host, got '%s'", key.Host)
	}
	if key.Model != "llama3.2" {
		t.Errorf("Expected configured default model, got '%s'", key.Model)
	}
}
