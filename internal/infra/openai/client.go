package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"voiced-trainer/internal/infra"
)

// Client wraps the OpenAI SDK with the retry policy shared by every call
// site. The trainer, tutor and preprocessor all go through it.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient builds a client for the given chat model. baseURL overrides the
// API endpoint and is only set in tests.
func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	var content string
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return infra.Permanent(errors.New("completion returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}

// classify marks client-side API errors as permanent so the retry loop only
// spends attempts on rate limits and server errors.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.HTTPStatusCode) {
		return infra.Permanent(err)
	}
	return err
}
