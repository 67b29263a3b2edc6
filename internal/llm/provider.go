// Package llm provides a provider-agnostic completion adapter used as the
// fallback path when no repository record matches a question.
// Zero external dependencies — uses net/http directly.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider is the interface for LLM completions.
type Provider interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
	// Name returns a human-readable provider name (e.g., "openai/gpt-4o-mini").
	Name() string
}

// CompletionOpts configures a single completion request.
type CompletionOpts struct {
	MaxTokens   int     // Max tokens to generate (0 = provider default)
	Temperature float64 // 0.0-2.0 (0 = deterministic)
	Model       string  // Override model for this request (empty = use provider default)
	Format      string  // "json" for structured output, empty for plain text
	System      string  // System prompt (optional)
}

// Config holds provider configuration.
type Config struct {
	Provider string // "openai", "openrouter"
	Model    string // e.g., "gpt-4o-mini", "meta-llama/llama-3.3-70b-instruct"
	APIKey   string // API key (empty = read from env)
	BaseURL  string // Optional URL override
}

// NewProvider creates an LLM provider from the given config.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return &openaiProvider{
			apiKey:  key,
			model:   model,
			baseURL: baseURL,
		}, nil

	case "openrouter":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENROUTER_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openrouter provider requires OPENROUTER_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = "openai/gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return &openrouterProvider{
			apiKey:  key,
			model:   model,
			baseURL: baseURL,
		}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, openrouter)", cfg.Provider)
	}
}

// ParseLLMFlag parses a --llm flag value into a Config.
// Format: "provider/model" e.g., "openai/gpt-4o-mini", "openrouter/meta-llama/llama-3.3-70b-instruct"
func ParseLLMFlag(flag string) (Config, error) {
	if flag == "" {
		return Config{Provider: "openai", Model: "gpt-4o-mini"}, nil
	}

	parts := strings.SplitN(flag, "/", 2)
	if len(parts) < 2 {
		return Config{}, fmt.Errorf("invalid --llm format %q: expected provider/model (e.g., openai/gpt-4o-mini)", flag)
	}

	provider := strings.ToLower(parts[0])
	model := parts[1]

	switch provider {
	case "openai", "openrouter":
		return Config{Provider: provider, Model: model}, nil
	default:
		return Config{}, fmt.Errorf("unknown provider %q in --llm flag (supported: openai, openrouter)", provider)
	}
}
