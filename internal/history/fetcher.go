// Package history retrieves bounded, chronologically ordered message windows
// from a chat channel.
package history

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/rs/zerolog"
)

// ErrNoReadAccess is returned by a Source when the bot cannot read the channel
var ErrNoReadAccess = errors.New("no permission to read channel history")

// Source is the chat-platform side of a fetch. Implementations may return
// messages in any order and may include automated authors.
type Source interface {
	Messages(ctx context.Context, channelID string, rng models.TimeRange, limit int) ([]models.Message, error)
}

// Fetcher builds message windows from a Source
type Fetcher struct {
	source Source
	logger zerolog.Logger
}

// NewFetcher creates a new window fetcher
func NewFetcher(source Source, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Fetch returns up to limit human messages inside rng, oldest first.
// Retrieval failures yield an empty window; callers treat that as
// "nothing to summarize".
func (f *Fetcher) Fetch(ctx context.Context, channelID string, rng models.TimeRange, limit int, timestamped bool) models.Window {
	window := models.Window{Timestamped: timestamped, Range: rng}

	raw, err := f.source.Messages(ctx, channelID, rng, limit)
	if err != nil {
		if errors.Is(err, ErrNoReadAccess) {
			f.logger.Warn().
				Str("channel_id", channelID).
				Msg("No permission to read messages")
		} else {
			f.logger.Error().
				Err(err).
				Str("channel_id", channelID).
				Msg("Failed to fetch messages")
		}
		return window
	}

	messages := make([]models.Message, 0, len(raw))
	for _, msg := range raw {
		if msg.Automated {
			continue
		}
		if strings.TrimSpace(msg.Body) == "" {
			continue
		}
		if !rng.Contains(msg.Timestamp) {
			continue
		}
		messages = append(messages, msg)
	}

	// Sources commonly deliver newest first.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	f.logger.Debug().
		Str("channel_id", channelID).
		Int("retrieved_count", len(raw)).
		Int("kept_count", len(messages)).
		Msg("Fetched message window")

	window.Messages = messages
	return window
}
