package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend calls the Anthropic Messages API
type anthropicBackend struct {
	client anthropic.Client
	model  string
	params decoding
}

func newAnthropicBackend(apiKey, model string, params decoding) *anthropicBackend {
	return &anthropicBackend{
		// No automatic retries: a failed call goes straight to the fallback.
		client: anthropic.NewClient(
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		),
		model:  model,
		params: params,
	}
}

// Complete sends one user message and returns the concatenated text blocks
func (b *anthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(b.params.maxTokens),
		Temperature: anthropic.Float(b.params.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic API returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("no text block in response")
	}

	return text.String(), nil
}

// Close is a no-op; the SDK client holds no resources
func (b *anthropicBackend) Close() error {
	return nil
}
