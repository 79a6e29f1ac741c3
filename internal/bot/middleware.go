package bot

import (
	"fmt"
	"runtime/debug"
)

// recoverMiddleware handles panics in message handlers
func (b *Bot) recoverMiddleware(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Panic recovered in handler")
		}
	}()

	handler()
}

// sendErrorMessage sends an error message to the user
func (b *Bot) sendErrorMessage(channelID string, errorMsg string) {
	_, err := b.api.ChannelMessageSend(channelID, errorMsg)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("channel_id", channelID).
			Msg("Failed to send error message")
	}
}

// sendMessage sends a message to the channel
func (b *Bot) sendMessage(channelID string, text string) error {
	_, err := b.api.ChannelMessageSend(channelID, text)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("channel_id", channelID).
			Msg("Failed to send message")
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
