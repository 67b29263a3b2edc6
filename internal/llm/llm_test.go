package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLLMFlag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantProv string
		wantMod  string
		wantErr  bool
	}{
		{"empty defaults to openai", "", "openai", "gpt-4o-mini", false},
		{"openai mini", "openai/gpt-4o-mini", "openai", "gpt-4o-mini", false},
		{"openai full", "openai/gpt-4o", "openai", "gpt-4o", false},
		{"openrouter model", "openrouter/meta-llama/llama-3.3-70b-instruct", "openrouter", "meta-llama/llama-3.3-70b-instruct", false},
		{"unknown provider", "anthropic/claude-4", "", "", true},
		{"no slash", "gpt-4o-mini", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseLLMFlag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Provider != tt.wantProv {
				t.Errorf("provider: got %q, want %q", cfg.Provider, tt.wantProv)
			}
			if cfg.Model != tt.wantMod {
				t.Errorf("model: got %q, want %q", cfg.Model, tt.wantMod)
			}
		})
	}
}

func TestNewProviderErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	// Unknown provider
	_, err := NewProvider(Config{Provider: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	// OpenAI without API key (clear env)
	t.Setenv("OPENAI_API_KEY", "")
	_, err = NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error for openai without API key")
	}

	// OpenRouter without API key
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err = NewProvider(Config{Provider: "openrouter"})
	if err == nil {
		t.Fatal("expected error for openrouter without API key")
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message should be system, got %q", req.Messages[0].Role)
		}
		if req.Messages[1].Content != "test prompt" {
			t.Errorf("unexpected prompt: %q", req.Messages[1].Content)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %f", req.Temperature)
		}

		var resp chatResponse
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{})
		resp.Choices[0].Message.Content = "  the answer  "
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := &openaiProvider{
		apiKey:  "test-key",
		model:   "gpt-4o-mini",
		baseURL: server.URL,
	}

	result, err := p.Complete(context.Background(), "test prompt", CompletionOpts{
		MaxTokens: 200,
		System:    "answer only",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result != "the answer" {
		t.Errorf("expected trimmed answer, got %q", result)
	}
}

func TestOpenRouterProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Title"); got != "AnswerBank" {
			t.Errorf("missing X-Title header, got %q", got)
		}
		var resp chatResponse
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{})
		resp.Choices[0].Message.Content = "ok"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := &openrouterProvider{
		apiKey:  "test-key",
		model:   "meta-llama/llama-3.3-70b-instruct",
		baseURL: server.URL,
	}

	result, err := p.Complete(context.Background(), "test prompt", CompletionOpts{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result != "ok" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestProviderCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	p := &openaiProvider{apiKey: "k", model: "gpt-4o-mini", baseURL: server.URL}
	if _, err := p.Complete(context.Background(), "x", CompletionOpts{}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestProviderCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := &openaiProvider{apiKey: "k", model: "gpt-4o-mini", baseURL: server.URL}
	if _, err := p.Complete(context.Background(), "x", CompletionOpts{}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
