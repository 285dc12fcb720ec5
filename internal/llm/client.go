// Package llm streams text completions from an OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Request is a single stateless completion: an optional system instruction
// and one user message.
type Request struct {
	System string
	Prompt string
}

// Generator streams a completion, calling onDelta for every fragment as it
// arrives, and returns the accumulated text.
type Generator interface {
	Stream(ctx context.Context, req Request, onDelta func(string)) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey    string
	BaseURL   string // empty uses the client library default
	Model     string
	MaxTokens int
}

// Client is a Generator backed by go-openai.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// NewClient creates a streaming client.
func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &Client{
		api:       openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Stream implements Generator.
func (c *Client) Stream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  messages,
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start completion stream: %w", err)
	}
	defer stream.Close()

	var content strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return content.String(), fmt.Errorf("failed to read completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return content.String(), nil
}
