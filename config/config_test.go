package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("Expected default ollama host, got %q", cfg.Ollama.Host)
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Expected default openai base URL, got %q", cfg.OpenAI.BaseURL)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0] != "anthropic" {
		t.Errorf("Expected default providers, got %v", cfg.Providers)
	}
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
providers: [openai, ollama]
openai:
  api_key: sk-test
  model: gpt-4o
ollama:
  model: mistral:7b
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("Expected api key from file, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected model override, got %q", cfg.OpenAI.Model)
	}
	// Unset fields keep their defaults
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Expected default base URL preserved, got %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("Expected default ollama host preserved, got %q", cfg.Ollama.Host)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "openai" {
		t.Errorf("Expected providers from file, got %v", cfg.Providers)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{
		Providers: []string{"ollama"},
		Ollama:    OllamaConfig{Host: "http://gpu-box:11434", Model: "llama3.2"},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Ollama.Host != "http://gpu-box:11434" {
		t.Errorf("Expected saved host, got %q", loaded.Ollama.Host)
	}
}

func TestLoadOpenAIConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_ORG_ID", "")

	cfg := &Config{OpenAI: OpenAIConfig{APIKey: "sk-file", BaseURL: "https://example.com/v1", Model: "gpt-4o"}}
	apiKey, baseURL, model, _ := LoadOpenAIConfig(cfg)
	if apiKey != "sk-env" {
		t.Errorf("Expected env override for api key, got %q", apiKey)
	}
	if baseURL != "https://example.com/v1" {
		t.Errorf("Expected file base URL, got %q", baseURL)
	}
	if model != "gpt-4o" {
		t.Errorf("Expected file model, got %q", model)
	}
}

func TestLoadOllamaConfigDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("OLLAMA_MODEL", "")

	host, model := LoadOllamaConfig(&Config{})
	if host != "http://localhost:11434" {
		t.Errorf("Expected default host, got %q", host)
	}
	if model != "" {
		t.Errorf("Expected empty model, got %q", model)
	}
}
