package llm

import (
	"context"
	"net/http"
)

// openaiProvider implements Provider using the OpenAI chat completions API.
type openaiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  http.Client
}

func (o *openaiProvider) Name() string {
	return "openai/" + o.model
}

func (o *openaiProvider) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	req := buildChatRequest(o.model, prompt, opts)
	return doChat(ctx, &o.client, o.baseURL+"/chat/completions", o.apiKey, "openai", req, nil)
}
