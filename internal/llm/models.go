package llm

import "context"

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 120

// backend is a single stateless text-generation call
type backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// decoding holds the fixed generation parameters
type decoding struct {
	maxTokens   int
	temperature float64
}
