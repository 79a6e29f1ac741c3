package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/chunk"
	"github.com/chihoong/discord-summarizer-bot/internal/history"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/chihoong/discord-summarizer-bot/internal/prompt"
	"github.com/chihoong/discord-summarizer-bot/internal/summary"
	"github.com/rs/zerolog"
)

// discordAPI is the part of *discordgo.Session the command handlers use
type discordAPI interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

// Bot represents the Discord summarizer bot
type Bot struct {
	session   *discordgo.Session
	api       discordAPI
	config    *models.BotConfig
	fetcher   summary.WindowFetcher
	generator summary.Generator
	logger    zerolog.Logger

	ctx      context.Context
	mu       sync.Mutex
	draining bool           // Set once shutdown starts; no handler may join wg after that
	wg       sync.WaitGroup // Tracks active handlers for graceful shutdown
}

// New creates a new bot instance. The session is not opened until Start.
func New(config *models.BotConfig, generator summary.Generator, logger zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	if config.LogLevel == "debug" {
		session.LogLevel = discordgo.LogDebug
	}

	b := &Bot{
		session:   session,
		api:       session,
		config:    config,
		fetcher:   history.NewFetcher(history.NewDiscordSource(session), logger),
		generator: generator,
		logger:    logger.With().Str("component", "bot").Logger(),
		ctx:       context.Background(),
	}

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleMessageCreate)

	return b, nil
}

// Start connects to the gateway and blocks until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info().Msg("Starting bot...")
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	b.logger.Info().Str("prefix", b.config.CommandPrefix).Msg("Bot started, waiting for commands...")

	<-ctx.Done()

	b.logger.Info().Msg("Shutting down bot...")
	b.stopAccepting()
	if err := b.session.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to close discord session")
	}

	// Wait for all active handlers to complete
	b.logger.Info().Msg("Waiting for active handlers to complete...")
	b.wg.Wait()
	b.logger.Info().Msg("All handlers completed")

	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info().
		Str("username", event.User.Username).
		Str("id", event.User.ID).
		Int("guilds", len(event.Guilds)).
		Msg("Discord bot logged in")
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	if !b.beginHandler() {
		b.logger.Debug().Str("message_id", m.ID).Msg("Ignoring message during shutdown")
		return
	}
	defer b.wg.Done()

	b.recoverMiddleware(func() {
		b.handleMessage(b.ctx, m.Message)
	})
}

// beginHandler registers a handler with wg unless shutdown has started
func (b *Bot) beginHandler() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draining {
		return false
	}
	b.wg.Add(1)
	return true
}

// stopAccepting makes every later beginHandler call fail, so wg.Wait
// cannot race with wg.Add
func (b *Bot) stopAccepting() {
	b.mu.Lock()
	b.draining = true
	b.mu.Unlock()
}

// newPipeline builds a pipeline for one invocation
func (b *Bot) newPipeline() *summary.Pipeline {
	return summary.NewPipeline(summary.Deps{
		Fetcher:      b.fetcher,
		Generator:    b.generator,
		Builder:      prompt.NewBuilder(b.config.MaxPromptChars),
		Chunker:      chunk.ForDiscord(),
		MaxRangeDays: b.config.MaxRangeDays,
	}, b.logger)
}
