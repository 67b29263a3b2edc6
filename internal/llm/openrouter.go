package llm

import (
	"context"
	"net/http"
)

// openrouterProvider implements Provider using the OpenRouter API
// (OpenAI-compatible).
type openrouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  http.Client
}

func (o *openrouterProvider) Name() string {
	return "openrouter/" + o.model
}

func (o *openrouterProvider) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	req := buildChatRequest(o.model, prompt, opts)
	headers := map[string]string{
		"HTTP-Referer": "https://github.com/answerbank/answerbank",
		"X-Title":      "AnswerBank",
	}
	return doChat(ctx, &o.client, o.baseURL+"/chat/completions", o.apiKey, "openrouter", req, headers)
}
