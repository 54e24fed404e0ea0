// Package openai implements the AI gateway on the OpenAI-compatible chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const requestTimeout = 90 * time.Second

type Adapter struct {
	cli   *openai.Client
	model string
}

// New builds a client; baseURL may point at any OpenAI-compatible provider.
func New(apiKey, baseURL, model string) *Adapter {
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Adapter{cli: openai.NewClientWithConfig(cfg), model: model}
}

func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.cli.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Low temperature keeps correction and selection output stable.
		Temperature: 0.1,
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ai timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return "", fmt.Errorf("ai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
