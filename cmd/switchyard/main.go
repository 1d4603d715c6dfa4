package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmontane/switchyard/config"
	"github.com/jmontane/switchyard/llm"
	"github.com/jmontane/switchyard/llm/anthropic"
	"github.com/jmontane/switchyard/llm/ollama"
	"github.com/jmontane/switchyard/llm/openai"
	swlogger "github.com/jmontane/switchyard/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command-line flags
	var (
		provider   = flag.String("provider", "", "Provider to use (anthropic, openai, ollama). Defaults to the first configured provider")
		model      = flag.String("model", "", "Model override")
		system     = flag.String("system", "", "System prompt")
		maxTokens  = flag.Int64("max-tokens", 1024, "Maximum tokens to generate")
		timeout    = flag.Duration("timeout", 2*time.Minute, "Request timeout")
		stream     = flag.Bool("stream", false, "Stream the response")
		logFile    = flag.String("logfile", "", "Path to log file. If not set, logs to stdout")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		configPath = flag.String("config", config.GetConfigPath(), "Path to config file")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		return fmt.Errorf("usage: switchyard [flags] <prompt>")
	}

	logger, err := swlogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry := llm.NewProviderRegistry(&llm.ProviderConfig{
		AnthropicAPIKey: cfg.Anthropic.APIKey,
		OllamaHost:      cfg.Ollama.Host,
		OllamaModel:     cfg.Ollama.Model,
		OpenAIAPIKey:    cfg.OpenAI.APIKey,
		OpenAIBaseURL:   cfg.OpenAI.BaseURL,
		OpenAIModel:     cfg.OpenAI.Model,
		OpenAIOrg:       cfg.OpenAI.Organization,
	}, cfg.Providers)

	var prefs []llm.Preference
	if *provider != "" {
		prefs = append(prefs, llm.Preference{Provider: *provider, Model: *model})
	}
	key, err := registry.Resolve(prefs)
	if err != nil {
		return fmt.Errorf("failed to resolve provider: %w", err)
	}

	client, err := buildClient(key, logger)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", key.Provider, err)
	}

	client = llm.WrapWithRetry(client, logger, nil)
	client = llm.WrapWithMiddleware(client, llm.NewLoggingMiddleware(logger))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req := &llm.Request{
		Model:     key.Model,
		Messages:  []llm.Message{llm.NewTextMessage(prompt)},
		MaxTokens: *maxTokens,
	}
	if *system != "" {
		req.System = []string{*system}
	}

	if *stream {
		return streamResponse(ctx, client, req)
	}

	resp, err := client.Synchronous(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message.Text)
	return nil
}

func buildClient(key *llm.ClientKey, logger zerolog.Logger) (llm.Client, error) {
	switch key.Provider {
	case llm.ProviderAnthropic:
		return anthropic.NewAnthropicClient(key.APIKey, key.Model, logger)
	case llm.ProviderOpenAI:
		return openai.NewOpenAIClient(key.APIKey, key.BaseURL, key.Model, key.Organization)
	case llm.ProviderOllama:
		return ollama.NewOllamaClient(key.Host, key.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}
}

func streamResponse(ctx context.Context, client llm.Client, req *llm.Request) error {
	stream, err := client.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Next() {
		event := stream.Event()
		if event == nil || event.Delta == nil {
			continue
		}
		if event.Delta.Type == llm.StreamDeltaTypeText {
			fmt.Print(event.Delta.Text)
		}
	}
	fmt.Println()
	return stream.Err()
}
