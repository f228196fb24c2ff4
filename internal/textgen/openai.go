package textgen

import (
	"context"

	"github.com/hyperifyio/postgen/internal/oai"
)

// OpenAICompleter sends completions to an OpenAI-compatible chat endpoint.
type OpenAICompleter struct {
	Client *oai.Client
	Model  string
}

func (o *OpenAICompleter) Complete(ctx context.Context, c Completion) (string, error) {
	req := oai.ChatCompletionsRequest{
		Model: o.Model,
		Messages: []oai.Message{
			{Role: oai.RoleSystem, Content: c.System},
			{Role: oai.RoleUser, Content: c.User},
		},
		Temperature: oai.Float64Ptr(c.Temperature),
		MaxTokens:   c.MaxTokens,
	}
	resp, err := o.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.FirstContent(), nil
}
