package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

// discordEpoch is the first millisecond of 2015, the base of Discord snowflakes
const discordEpoch int64 = 1420070400000

// pageSize is the most messages Discord returns per history request
const pageSize = 100

// messageLister is the part of *discordgo.Session used for history
type messageLister interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// DiscordSource reads channel history through the Discord REST API
type DiscordSource struct {
	session messageLister
}

// NewDiscordSource creates a Source backed by a discordgo session
func NewDiscordSource(session messageLister) *DiscordSource {
	return &DiscordSource{session: session}
}

// Messages pages backwards from rng.Before (or the newest message) until
// limit messages are collected or rng.After is reached. Results are newest
// first, exactly as Discord returns them.
func (s *DiscordSource) Messages(ctx context.Context, channelID string, rng models.TimeRange, limit int) ([]models.Message, error) {
	beforeID := ""
	if !rng.Before.IsZero() {
		beforeID = snowflakeAt(rng.Before)
	}

	var out []models.Message
	for len(out) < limit {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		want := limit - len(out)
		if want > pageSize {
			want = pageSize
		}

		page, err := s.session.ChannelMessages(channelID, want, beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, classifyError(err)
		}

		reachedCutoff := false
		for _, msg := range page {
			if msg == nil || msg.Author == nil {
				continue
			}
			if !msg.Timestamp.After(rng.After) {
				reachedCutoff = true
				break
			}
			out = append(out, convertMessage(msg))
			if len(out) >= limit {
				break
			}
		}

		if reachedCutoff || len(page) < want {
			break
		}
		beforeID = page[len(page)-1].ID
	}

	return out, nil
}

func convertMessage(msg *discordgo.Message) models.Message {
	return models.Message{
		AuthorName: displayName(msg),
		Timestamp:  msg.Timestamp,
		Body:       msg.Content,
		Automated:  msg.Author.Bot,
	}
}

// displayName prefers the guild nickname, then the global display name
func displayName(msg *discordgo.Message) string {
	if msg.Member != nil && msg.Member.Nick != "" {
		return msg.Member.Nick
	}
	if msg.Author.GlobalName != "" {
		return msg.Author.GlobalName
	}
	return msg.Author.Username
}

// snowflakeAt returns the smallest snowflake ID created at t
func snowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatUint(uint64(ms)<<22, 10)
}

func classifyError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrNoReadAccess, err)
		}
		if restErr.Message != nil &&
			(restErr.Message.Code == discordgo.ErrCodeMissingAccess || restErr.Message.Code == discordgo.ErrCodeMissingPermissions) {
			return fmt.Errorf("%w: %v", ErrNoReadAccess, err)
		}
	}
	return fmt.Errorf("failed to fetch channel messages: %w", err)
}
