package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiBackend calls Google Gemini
type geminiBackend struct {
	client *genai.Client
	model  string
	params decoding
}

func newGeminiBackend(ctx context.Context, apiKey, model string, params decoding) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiBackend{
		client: client,
		model:  model,
		params: params,
	}, nil
}

// Complete makes actual API call to Gemini
func (b *geminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	model := b.client.GenerativeModel(b.model)

	// Low temperature keeps summaries factual
	model.SetTemperature(float32(b.params.temperature))
	model.SetMaxOutputTokens(int32(b.params.maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	// Extract text from response
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates from LLM")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}

	// Extract text from all parts
	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	if strings.TrimSpace(responseText.String()) == "" {
		return "", fmt.Errorf("empty text in response")
	}

	return responseText.String(), nil
}

// Close closes the genai client and releases resources
func (b *geminiBackend) Close() error {
	return b.client.Close()
}
