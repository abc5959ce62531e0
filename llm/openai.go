// Package llm wraps the chat-completion provider used for quiz generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	config "github.com/anjiri1684/qura/configs"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrMissingProviderKey = errors.New("missing OPENAI_API_KEY")

// Client sends single-prompt chat completions to an OpenAI-compatible API.
type Client struct {
	model llms.Model
	name  string
}

func NewOpenAIClient(cfg config.OpenAIConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingProviderKey
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	return &Client{model: model, name: cfg.Model}, nil
}

func (c *Client) Model() string {
	return c.name
}

// Complete sends prompt as a single user message and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return out, nil
}
