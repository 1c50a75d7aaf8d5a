// Package llm wraps the hosted language model behind a small capability
// interface so callers and tests can swap in fixed-response fakes.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

// Completer is the single operation the core needs from a language model.
// Implementations must honor ctx deadlines; callers treat every reply as
// untrusted text.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Client talks to an OpenAI-compatible chat completion endpoint (Groq by default).
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a chat completion client. Empty baseURL and model fall
// back to the Groq endpoint and its llama model.
func NewClient(apiKey, baseURL, model string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Complete sends one system+user exchange and returns the raw text reply.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	c.logger.Debug("llm completion",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}
