package llm

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/rs/zerolog"
)

// Generator produces summary text from a prompt using the configured backend
type Generator struct {
	backend  backend
	provider models.Provider
	model    string
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewGenerator creates a generator for cfg.Provider. Without an API key the
// generator is created unavailable and never makes a call.
func NewGenerator(ctx context.Context, cfg *models.BotConfig, logger zerolog.Logger) (*Generator, error) {
	g := &Generator{
		provider: cfg.Provider,
		model:    cfg.Model,
		timeout:  cfg.GenerationTimeout(),
		logger:   logger.With().Str("component", "llm").Str("provider", cfg.Provider.String()).Logger(),
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout * time.Second
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		g.logger.Warn().Msg("No API key configured, summaries will use the fallback")
		return g, nil
	}

	params := decoding{maxTokens: cfg.MaxOutputTokens, temperature: cfg.Temperature}

	switch cfg.Provider {
	case models.ProviderAnthropic:
		g.backend = newAnthropicBackend(apiKey, cfg.Model, params)
	case models.ProviderGemini:
		b, err := newGeminiBackend(ctx, apiKey, cfg.Model, params)
		if err != nil {
			return nil, err
		}
		g.backend = b
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	g.logger.Info().Str("model", g.model).Dur("timeout", g.timeout).Msg("Generation backend configured")
	return g, nil
}

// Available reports whether a backend credential is configured
func (g *Generator) Available() bool {
	return g.backend != nil
}

// Model returns the configured model name
func (g *Generator) Model() string {
	return g.model
}

// Close releases backend resources
func (g *Generator) Close() error {
	if g.backend == nil {
		return nil
	}
	if err := g.backend.Close(); err != nil {
		g.logger.Error().Err(err).Msg("Failed to close generation backend")
		return err
	}
	return nil
}

// Generate makes one blocking backend call. Failures are returned in the
// result, never as a panic or a bare error.
func (g *Generator) Generate(ctx context.Context, prompt string) *models.GenerationResult {
	result := &models.GenerationResult{Model: g.model}

	if !g.Available() {
		result.Err = models.ErrBackendUnavailable
		return result
	}

	startTime := time.Now()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Msg("Sending request to LLM")

	text, err := g.complete(ctx, prompt)
	result.ExecutionTimeMs = int(time.Since(startTime).Milliseconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Err = fmt.Errorf("%w after %s: %v", models.ErrGenerationTimeout, g.timeout, err)
		} else {
			result.Err = fmt.Errorf("%w: %v", models.ErrBackendCallFailed, err)
		}

		g.logger.Error().
			Err(err).
			Str("model", g.model).
			Int("execution_time_ms", result.ExecutionTimeMs).
			Msg("LLM request failed")
		return result
	}

	result.Text = text

	g.logger.Info().
		Str("model", g.model).
		Int("response_length", len([]rune(text))).
		Int("execution_time_ms", result.ExecutionTimeMs).
		Msg("LLM response generated successfully")

	return result
}

// complete calls the backend, turning a panic into an error
func (g *Generator) complete(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered in generation backend")
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()

	return g.backend.Complete(ctx, prompt)
}
