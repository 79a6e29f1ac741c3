package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/chunk"
	"github.com/chihoong/discord-summarizer-bot/internal/config"
	"github.com/chihoong/discord-summarizer-bot/internal/history"
	"github.com/chihoong/discord-summarizer-bot/internal/llm"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/chihoong/discord-summarizer-bot/internal/prompt"
	"github.com/chihoong/discord-summarizer-bot/internal/summary"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a channel once and print the result",
	Long: `Run the summary pipeline once over the Discord REST API, without joining
the gateway, and print every delivered chunk to stdout.

Examples:
  bot summarize --channel 123456789012345678
  bot summarize --channel 123456789012345678 --hours 6 --style brief
  bot summarize --channel 123456789012345678 --start 2025-05-20 --end 2025-05-22 \
    --instruction "List every decision"`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

var (
	summarizeChannelID   string
	summarizeHours       int
	summarizeLimit       int
	summarizeStyle       string
	summarizeStart       string
	summarizeEnd         string
	summarizeInstruction string
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeChannelID, "channel", "", "Channel ID to summarize (required)")
	summarizeCmd.Flags().IntVar(&summarizeHours, "hours", 24, "Look back this many hours")
	summarizeCmd.Flags().IntVar(&summarizeLimit, "limit", 100, "Maximum number of messages to read")
	summarizeCmd.Flags().StringVar(&summarizeStyle, "style", "comprehensive", "Summary style")
	summarizeCmd.Flags().StringVar(&summarizeStart, "start", "", "First day of a date range (YYYY-MM-DD)")
	summarizeCmd.Flags().StringVar(&summarizeEnd, "end", "", "Last day of a date range (YYYY-MM-DD)")
	summarizeCmd.Flags().StringVar(&summarizeInstruction, "instruction", "", "Custom instruction instead of a style")
	_ = summarizeCmd.MarkFlagRequired("channel")
	summarizeCmd.MarkFlagsRequiredTogether("start", "end")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogger(cfg.LogLevel, cfg.Environment)

	style, err := models.ParseStyle(summarizeStyle)
	if err != nil {
		return err
	}

	limit := summarizeLimit
	if cfg.MaxFetchLimit > 0 && limit > cfg.MaxFetchLimit {
		logger.Warn().Int("requested", limit).Int("max", cfg.MaxFetchLimit).Msg("Message limit capped")
		limit = cfg.MaxFetchLimit
	}

	window := models.RelativeWindow(summarizeHours, limit)
	if summarizeStart != "" {
		window = models.DateRangeWindow(summarizeStart, summarizeEnd, limit)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d := cfg.CommandDeadline(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	label := summarizeChannelID
	channel, err := session.Channel(summarizeChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to look up channel %s: %w", summarizeChannelID, err)
	}
	if channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
		return fmt.Errorf("%w: %s", models.ErrNotATextChannel, summarizeChannelID)
	}
	if channel.Name != "" {
		label = channel.Name
	}

	generator, err := llm.NewGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	defer func() {
		if err := generator.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close generator")
		}
	}()

	pipeline := summary.NewPipeline(summary.Deps{
		Fetcher:      history.NewFetcher(history.NewDiscordSource(session), logger),
		Generator:    generator,
		Builder:      prompt.NewBuilder(cfg.MaxPromptChars),
		Chunker:      chunk.ForDiscord(),
		MaxRangeDays: cfg.MaxRangeDays,
	}, logger)

	errOut := cmd.ErrOrStderr()
	outcome, err := pipeline.Run(ctx, summary.Request{
		ChannelID:    summarizeChannelID,
		ChannelLabel: label,
		Window:       window,
		Prompt: models.PromptSpec{
			Style:             style,
			CustomInstruction: summarizeInstruction,
			ChannelLabel:      label,
		},
		Notify: func(text string) { fmt.Fprintln(errOut, text) },
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, c := range outcome.Chunks {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, c.Render())
	}

	if outcome.State == summary.StateTimedOut {
		return errors.New("summary generation timed out")
	}
	return nil
}
