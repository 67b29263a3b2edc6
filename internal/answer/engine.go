// Package answer combines the repository matcher with the LLM fallback:
// repository first, direct attachment shortcuts second, completion API
// last. A missing or failing provider degrades the result, it never turns
// a question into a hard error.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/answerbank/answerbank/internal/config"
	"github.com/answerbank/answerbank/internal/ingest"
	"github.com/answerbank/answerbank/internal/llm"
)

// Matcher is the repository lookup the engine consults first.
type Matcher interface {
	Match(query string) (bool, string)
}

// Options carries one question through the engine.
type Options struct {
	Question string
	File     *ingest.FileInfo
}

// Result is the engine's answer with its provenance.
type Result struct {
	Answer   string `json:"answer"`
	Matched  bool   `json:"matched"`
	Source   string `json:"source"` // "repository", "direct", "llm"
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// Engine answers questions from the repository, falling back to the LLM.
type Engine struct {
	matcher Matcher
	llm     llm.Provider
	model   string
}

func NewEngine(matcher Matcher, provider llm.Provider, model string) *Engine {
	return &Engine{matcher: matcher, llm: provider, model: model}
}

// ResolveProvider resolves a provider/model from CLI/config and attempts
// provider init. If no usable provider is available, it returns
// (nil, model, reason, nil) for graceful degradation.
func ResolveProvider(modelFlag string) (llm.Provider, string, string, error) {
	resolved, err := config.ResolveConfig(config.ResolveOptions{CLILLM: modelFlag})
	if err != nil {
		return nil, "", "", err
	}

	model := strings.TrimSpace(modelFlag)
	if model == "" {
		model = resolved.LLMModel.Value
	}
	if strings.TrimSpace(model) == "" {
		return nil, "", "no_llm_configured", nil
	}

	cfg, err := llm.ParseLLMFlag(model)
	if err != nil {
		if strings.TrimSpace(modelFlag) != "" {
			return nil, model, "", err
		}
		return nil, model, "invalid_model_config", nil
	}
	if key := resolved.APIKeyForProvider(model); key.Value != "" {
		cfg.APIKey = key.Value
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, model, "no_llm_configured", nil
	}
	return provider, model, "", nil
}

// Respond answers one question: repository match first, then the CSV
// direct-answer shortcut, then the completion API.
func (e *Engine) Respond(ctx context.Context, opts Options) (*Result, error) {
	question := strings.TrimSpace(opts.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	if e.matcher != nil {
		if matched, ans := e.matcher.Match(question); matched {
			return &Result{Answer: ans, Matched: true, Source: "repository"}, nil
		}
	}

	if ans, ok := directAnswer(question, opts.File); ok {
		return &Result{Answer: ans, Source: "direct"}, nil
	}

	if e.llm == nil {
		return degraded("no_llm_configured"), nil
	}

	prompt := buildPrompt(question, opts.File)
	resp, err := e.llm.Complete(ctx, prompt, llm.CompletionOpts{
		System:      "You are a helpful assistant for a data science course. Your task is to answer questions accurately. Provide only the exact answer without any explanations or additional text.",
		Temperature: 0,
	})
	if err != nil {
		return degraded("llm_error"), nil
	}

	answerText := strings.TrimSpace(resp)
	if answerText == "" {
		return degraded("empty_llm_response"), nil
	}

	return &Result{
		Answer:   answerText,
		Source:   "llm",
		Model:    e.model,
		Provider: providerOfModel(e.model),
	}, nil
}

// directAnswer handles the "value in the answer column" pattern on CSV
// attachments without a completion call.
func directAnswer(question string, file *ingest.FileInfo) (string, bool) {
	if file == nil || file.FirstRow == nil {
		return "", false
	}
	q := strings.ToLower(question)
	if !strings.Contains(q, "answer column") &&
		!(strings.Contains(q, "column") && strings.Contains(q, "answer")) {
		return "", false
	}
	v, ok := file.FirstRow["answer"]
	if !ok {
		return "", false
	}
	return v, true
}

func buildPrompt(question string, file *ingest.FileInfo) string {
	if file != nil && strings.TrimSpace(file.Content) != "" {
		return fmt.Sprintf("Question: %s\n\nFile Content: %s\n\nAnswer the question based on the file content. Provide ONLY the answer, without any explanations or text.", question, file.Content)
	}
	return fmt.Sprintf("Question: %s\n\nAnswer the question directly. Provide ONLY the answer, without any explanations or text.", question)
}

func degraded(reason string) *Result {
	return &Result{
		Answer:   "No repository match and no completion provider available.",
		Degraded: true,
		Reason:   reason,
	}
}

func providerOfModel(model string) string {
	m := strings.TrimSpace(strings.ToLower(model))
	if m == "" {
		return ""
	}
	if idx := strings.Index(m, "/"); idx > 0 {
		return m[:idx]
	}
	return m
}
