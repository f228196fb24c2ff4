package oai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperifyio/postgen/internal/errs"
)

// Client talks to an OpenAI-compatible API. Every call is a single attempt.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout means no client-side timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	trimmed := strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: trimmed,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionsRequest) (ChatCompletionsResponse, error) {
	var out ChatCompletionsResponse
	if err := c.postJSON(ctx, "chat completion", "/chat/completions", req, &out); err != nil {
		return ChatCompletionsResponse{}, err
	}
	return out, nil
}

// CreateImage requests image generations and returns the decoded response.
func (c *Client) CreateImage(ctx context.Context, req ImageRequest) (ImagesResponse, error) {
	var out ImagesResponse
	if err := c.postJSON(ctx, "image generation", "/images/generations", req, &out); err != nil {
		return ImagesResponse{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errs.Upstream("openai", op, err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close() // best-effort close
	if readErr != nil {
		return errs.Upstream("openai", op, fmt.Errorf("read response body: %w", readErr))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.UpstreamStatus("openai", op+" "+endpoint, resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Upstream("openai", op, fmt.Errorf("decode response: %w; body: %s", err, errs.Truncate(string(respBody), 1000)))
	}
	return nil
}
