package models

import "time"

// Provider represents the text-generation backend
type Provider string

const (
	// ProviderAnthropic uses the Anthropic Messages API
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini uses Google Gemini
	ProviderGemini Provider = "gemini"
)

// String returns string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// DefaultModel returns the model used when AI_MODEL is not set
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "claude-3-5-sonnet-20241022"
	}
}

// GenerationResult is the outcome of a single backend call.
// Exactly one of Text or Err is meaningful.
type GenerationResult struct {
	Text            string
	Model           string
	ExecutionTimeMs int
	Err             error
}

// Failed reports whether the call produced no usable text
func (r *GenerationResult) Failed() bool {
	return r == nil || r.Err != nil
}

// BotConfig represents bot configuration
type BotConfig struct {
	// Discord settings
	DiscordToken  string
	CommandPrefix string

	// Generation backend settings
	Provider        Provider
	AnthropicAPIKey string
	GeminiAPIKey    string
	Model           string
	AITimeout       int // seconds
	MaxOutputTokens int
	Temperature     float64

	// Pipeline limits
	MaxPromptChars int
	MaxRangeDays   int
	MaxFetchLimit  int
	CommandTimeout int // seconds

	// App settings
	LogLevel    string
	Environment string
}

// APIKey returns the credential for the configured provider
func (c *BotConfig) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.AnthropicAPIKey
	}
}

// GenerationTimeout returns AITimeout as a duration
func (c *BotConfig) GenerationTimeout() time.Duration {
	return time.Duration(c.AITimeout) * time.Second
}

// CommandDeadline returns CommandTimeout as a duration
func (c *BotConfig) CommandDeadline() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}
