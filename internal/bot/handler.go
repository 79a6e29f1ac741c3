package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/chihoong/discord-summarizer-bot/internal/summary"
)

const (
	usageSummarize        = "summarize [hours] [limit] [style]"
	usageSummarizeChannel = "summarize_channel <channel> [hours] [limit] [style]"
	usageSummarizeCustom  = "summarize_custom <channel> <YYYY-MM-DD> <YYYY-MM-DD> <instruction...>"
)

// handleMessage processes incoming message
func (b *Bot) handleMessage(ctx context.Context, message *discordgo.Message) {
	cmd, ok := parseCommand(message.Content, b.config.CommandPrefix)
	if !ok {
		return
	}
	b.handleCommand(ctx, message, cmd)
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, message *discordgo.Message, cmd command) {
	logger := b.logger.With().
		Str("command", cmd.name).
		Str("channel_id", message.ChannelID).
		Str("guild_id", message.GuildID).
		Logger()
	if message.Author != nil {
		logger = logger.With().Str("user_id", message.Author.ID).Str("username", message.Author.Username).Logger()
	}
	logger.Info().Strs("args", cmd.args).Msg("Received command")

	switch cmd.name {
	case "ping":
		b.sendMessage(message.ChannelID, "🏓 Pong! Bot is working!")
	case "test":
		b.sendMessage(message.ChannelID, "✅ Test command working!")
	case "help_summarizer", "help":
		b.sendMessage(message.ChannelID, b.helpText())
	case "styles":
		b.sendMessage(message.ChannelID, stylesText())
	case "summarize":
		b.handleSummarize(ctx, message, cmd.args)
	case "summarize_channel":
		b.handleSummarizeChannel(ctx, message, cmd.args)
	case "summarize_custom":
		b.handleSummarizeCustom(ctx, message, cmd.args)
	default:
		logger.Debug().Msg("Ignoring unknown command")
	}
}

// handleSummarize summarizes the channel the command was sent in
func (b *Bot) handleSummarize(ctx context.Context, message *discordgo.Message, args []string) {
	parsed, err := parseRelativeArgs(args)
	if err != nil {
		b.sendErrorMessage(message.ChannelID, b.errorText(err, usageSummarize))
		return
	}

	label := message.ChannelID
	if ch, err := b.api.Channel(message.ChannelID); err == nil && ch.Name != "" {
		label = ch.Name
	}

	limit, notice := clampLimit(parsed.limit, b.config.MaxFetchLimit)
	b.runSummary(ctx, message.ChannelID, usageSummarize, summary.Request{
		ChannelID:    message.ChannelID,
		ChannelLabel: label,
		Window:       models.RelativeWindow(parsed.hours, limit),
		Prompt:       models.PromptSpec{Style: parsed.style, ChannelLabel: label},
		Announce:     withNotice(notice, fmt.Sprintf("📊 Fetching messages from the last %d hours...", parsed.hours)),
	})
}

// handleSummarizeChannel summarizes a named channel of the same guild
func (b *Bot) handleSummarizeChannel(ctx context.Context, message *discordgo.Message, args []string) {
	if len(args) == 0 {
		b.sendErrorMessage(message.ChannelID, b.errorText(fmt.Errorf("%w: channel is required", errUsage), usageSummarizeChannel))
		return
	}
	parsed, err := parseRelativeArgs(args[1:])
	if err != nil {
		b.sendErrorMessage(message.ChannelID, b.errorText(err, usageSummarizeChannel))
		return
	}

	channel, ok := b.lookupChannel(message, args[0])
	if !ok {
		return
	}

	limit, notice := clampLimit(parsed.limit, b.config.MaxFetchLimit)
	b.runSummary(ctx, message.ChannelID, usageSummarizeChannel, summary.Request{
		ChannelID:    channel.ID,
		ChannelLabel: channel.Name,
		Window:       models.RelativeWindow(parsed.hours, limit),
		Prompt:       models.PromptSpec{Style: parsed.style, ChannelLabel: channel.Name},
		Announce:     withNotice(notice, fmt.Sprintf("📊 Fetching messages from #%s (last %d hours)...", channel.Name, parsed.hours)),
	})
}

// handleSummarizeCustom summarizes whole days of a named channel with a
// free-form instruction
func (b *Bot) handleSummarizeCustom(ctx context.Context, message *discordgo.Message, args []string) {
	parsed, err := parseCustomArgs(args)
	if err != nil {
		b.sendErrorMessage(message.ChannelID, b.errorText(err, usageSummarizeCustom))
		return
	}

	channel, ok := b.lookupChannel(message, parsed.channel)
	if !ok {
		return
	}

	b.runSummary(ctx, message.ChannelID, usageSummarizeCustom, summary.Request{
		ChannelID:    channel.ID,
		ChannelLabel: channel.Name,
		Window:       models.DateRangeWindow(parsed.startDate, parsed.endDate, b.config.MaxFetchLimit),
		Prompt:       models.PromptSpec{CustomInstruction: parsed.instruction, ChannelLabel: channel.Name},
		Announce:     fmt.Sprintf("📊 Fetching messages from #%s (%s to %s)...", channel.Name, parsed.startDate, parsed.endDate),
	})
}

// lookupChannel resolves ref among the guild's channels, replying on failure
func (b *Bot) lookupChannel(message *discordgo.Message, ref string) (*discordgo.Channel, bool) {
	if message.GuildID == "" {
		b.sendErrorMessage(message.ChannelID, "❌ Error: this command only works in a server channel.")
		return nil, false
	}

	channels, err := b.api.GuildChannels(message.GuildID)
	if err != nil {
		b.logger.Error().Err(err).Str("guild_id", message.GuildID).Msg("Failed to list guild channels")
		b.sendErrorMessage(message.ChannelID, "❌ Error: could not list the channels of this server.")
		return nil, false
	}

	channel, err := resolveChannel(channels, ref)
	if err != nil {
		b.sendErrorMessage(message.ChannelID, b.errorText(err, ""))
		return nil, false
	}
	return channel, true
}

// runSummary runs one pipeline invocation and delivers the chunks in order
func (b *Bot) runSummary(ctx context.Context, replyChannelID, usage string, req summary.Request) {
	if d := b.config.CommandDeadline(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	req.Notify = func(text string) {
		_ = b.sendMessage(replyChannelID, text)
	}

	outcome, err := b.newPipeline().Run(ctx, req)
	if err != nil {
		b.sendErrorMessage(replyChannelID, b.errorText(err, usage))
		return
	}

	for _, c := range outcome.Chunks {
		if err := b.sendMessage(replyChannelID, c.Render()); err != nil {
			b.logger.Error().
				Err(err).
				Str("invocation_id", outcome.InvocationID).
				Int("chunk", c.Index).
				Int("total", c.Total).
				Msg("Stopped delivering summary")
			return
		}
	}
}

// errorText maps an error to the reply shown to the user
func (b *Bot) errorText(err error, usage string) string {
	var msg string
	var chErr *channelError
	switch {
	case errors.As(err, &chErr) && errors.Is(err, models.ErrUnknownChannel):
		msg = fmt.Sprintf("Channel '%s' not found.", chErr.ref)
	case errors.As(err, &chErr) && errors.Is(err, models.ErrNotATextChannel):
		msg = fmt.Sprintf("'%s' is not a text channel.", chErr.ref)
	case errors.Is(err, models.ErrInvalidDateFormat):
		msg = "❌ Error: dates must use the YYYY-MM-DD format, e.g. 2025-05-20."
	case errors.Is(err, models.ErrInvalidDateRange):
		msg = "❌ Error: the end date must be on or after the start date."
	case errors.Is(err, models.ErrUnknownStyle):
		msg = fmt.Sprintf("❌ Error: unknown style. Available styles: %s", styleNames())
	default:
		msg = fmt.Sprintf("❌ Error: %v", err)
	}

	if usage != "" && (errors.Is(err, errUsage) || errors.Is(err, models.ErrInvalidWindow)) {
		msg += fmt.Sprintf("\nUsage: `%s%s`", b.config.CommandPrefix, usage)
	}
	return msg
}

func withNotice(notice, text string) string {
	if notice == "" {
		return text
	}
	return notice + "\n" + text
}

func styleNames() string {
	names := make([]string, len(models.Styles))
	for i, s := range models.Styles {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func stylesText() string {
	var sb strings.Builder
	sb.WriteString("🎨 **Summary styles**\n")
	for _, s := range models.Styles {
		sb.WriteString(fmt.Sprintf("\n`%s` - %s", s, s.Description()))
	}
	return sb.String()
}

func (b *Bot) helpText() string {
	p := b.config.CommandPrefix
	lines := []string{
		"🤖 **Discord Summarizer Bot**",
		"",
		"**Commands:**",
		"",
		fmt.Sprintf("`%sping` - Test if bot is working", p),
		fmt.Sprintf("`%stest` - Another test command", p),
		fmt.Sprintf("`%shelp_summarizer` - Show this help message", p),
		fmt.Sprintf("`%sstyles` - List summary styles", p),
		fmt.Sprintf("`%s%s` - Summarize recent messages in current channel", p, usageSummarize),
		fmt.Sprintf("`%s%s` - Summarize messages from specific channel", p, usageSummarizeChannel),
		fmt.Sprintf("`%s%s` - Summarize whole days with your own instruction", p, usageSummarizeCustom),
		"",
		"**Examples:**",
		fmt.Sprintf("• `%ssummarize` - Summarize last 24 hours", p),
		fmt.Sprintf("• `%ssummarize 12 50 brief` - Last 12 hours, max 50 messages, brief style", p),
		fmt.Sprintf("• `%ssummarize_channel general 6` - Summarize #general from last 6 hours", p),
		fmt.Sprintf("• `%ssummarize_custom general 2025-05-20 2025-05-22 List every decision`", p),
		"",
		fmt.Sprintf("Summaries cover at most %d days, and at most %d messages are read.", b.config.MaxRangeDays, b.config.MaxFetchLimit),
	}
	return strings.Join(lines, "\n")
}
