package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/joho/godotenv"
)

// Load loads configuration from environment variables.
// envFile is loaded first when it exists; variables already set in the
// environment win over the file.
func Load(envFile string) (*models.BotConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	provider := models.Provider(strings.ToLower(getEnv("AI_PROVIDER", string(models.ProviderAnthropic))))

	config := &models.BotConfig{
		// Discord settings
		DiscordToken:  getEnv("DISCORD_BOT_TOKEN", ""),
		CommandPrefix: getEnv("COMMAND_PREFIX", "!"),

		// Generation backend settings
		Provider:        provider,
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		Model:           getEnv("AI_MODEL", provider.DefaultModel()),
		AITimeout:       getEnvInt("AI_TIMEOUT", 120),
		MaxOutputTokens: getEnvInt("AI_MAX_TOKENS", 1000),
		Temperature:     getEnvFloat("AI_TEMPERATURE", 0.3),

		// Pipeline limits
		MaxPromptChars: getEnvInt("MAX_PROMPT_CHARS", 150000),
		MaxRangeDays:   getEnvInt("MAX_RANGE_DAYS", 90),
		MaxFetchLimit:  getEnvInt("MAX_FETCH_LIMIT", 1000),
		CommandTimeout: getEnvInt("COMMAND_TIMEOUT", 300),

		// App settings
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks if all required configuration values are set
func validate(cfg *models.BotConfig) error {
	if cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if strings.TrimSpace(cfg.CommandPrefix) == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be blank")
	}

	switch cfg.Provider {
	case models.ProviderAnthropic, models.ProviderGemini:
	default:
		return fmt.Errorf("AI_PROVIDER must be one of: anthropic, gemini; got %s", cfg.Provider)
	}

	// Validate positive values
	if cfg.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %d", cfg.AITimeout)
	}
	if cfg.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 1, got %g", cfg.Temperature)
	}
	if cfg.MaxPromptChars <= 0 {
		return fmt.Errorf("MAX_PROMPT_CHARS must be positive, got %d", cfg.MaxPromptChars)
	}
	if cfg.MaxRangeDays <= 0 {
		return fmt.Errorf("MAX_RANGE_DAYS must be positive, got %d", cfg.MaxRangeDays)
	}
	if cfg.MaxFetchLimit <= 0 {
		return fmt.Errorf("MAX_FETCH_LIMIT must be positive, got %d", cfg.MaxFetchLimit)
	}
	if cfg.CommandTimeout <= 0 {
		return fmt.Errorf("COMMAND_TIMEOUT must be positive, got %d", cfg.CommandTimeout)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %s", cfg.LogLevel)
	}

	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvFloat retrieves environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
