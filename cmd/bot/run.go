package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chihoong/discord-summarizer-bot/internal/bot"
	"github.com/chihoong/discord-summarizer-bot/internal/config"
	"github.com/chihoong/discord-summarizer-bot/internal/llm"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("provider", cfg.Provider.String()).
		Str("model", cfg.Model).
		Str("prefix", cfg.CommandPrefix).
		Int("max_range_days", cfg.MaxRangeDays).
		Int("max_fetch_limit", cfg.MaxFetchLimit).
		Msg("Starting Discord Summarizer Bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize generation backend
	generator, err := llm.NewGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	defer func() {
		if err := generator.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close generator")
		}
	}()
	if !generator.Available() {
		logger.Warn().
			Str("provider", cfg.Provider.String()).
			Msg("No API key set for the AI provider, bot will run but summaries will be basic")
	}

	// Initialize bot
	discordBot, err := bot.New(cfg, generator, logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	botErrChan := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := discordBot.Start(ctx); err != nil {
			botErrChan <- err
		}
	}()

	logger.Info().Msg("Bot is running. Press Ctrl+C to stop.")

	// Wait for termination signal or bot error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
	case err := <-botErrChan:
		return fmt.Errorf("bot stopped with error: %w", err)
	}

	// Graceful shutdown
	logger.Info().Msg("Initiating graceful shutdown...")
	cancel()

	select {
	case <-time.After(shutdownTimeout):
		logger.Warn().Msg("Shutdown timeout exceeded, some requests may be lost")
	case <-done:
		logger.Info().Msg("Graceful shutdown completed")
	}

	logger.Info().Msg("Bot stopped")
	return nil
}
