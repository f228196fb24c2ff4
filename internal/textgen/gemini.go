package textgen

import (
	"context"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hyperifyio/postgen/internal/errs"
)

// GeminiCompleter sends completions to Google's Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter dials the Gemini API with apiKey. Close releases the
// underlying client.
func NewGeminiCompleter(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiCompleter, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, errs.Upstream("gemini", "new client", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, c Completion) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(float32(c.Temperature))
	model.SetMaxOutputTokens(int32(c.MaxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(c.System)}}

	resp, err := model.GenerateContent(ctx, genai.Text(c.User))
	if err != nil {
		return "", errs.Upstream("gemini", "generate content", err)
	}
	return extractText(resp), nil
}

func (g *GeminiCompleter) Close() error { return g.client.Close() }

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
