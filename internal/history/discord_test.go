package history

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

type lister struct {
	// all messages, newest first
	messages []*discordgo.Message
	err      error
	requests []string
}

func (l *lister) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	l.requests = append(l.requests, beforeID)
	if l.err != nil {
		return nil, l.err
	}

	start := 0
	if beforeID != "" {
		before, _ := strconv.ParseUint(beforeID, 10, 64)
		for start < len(l.messages) {
			id, _ := strconv.ParseUint(l.messages[start].ID, 10, 64)
			if id < before {
				break
			}
			start++
		}
	}
	end := start + limit
	if end > len(l.messages) {
		end = len(l.messages)
	}
	return l.messages[start:end], nil
}

func discordMessages(n int, newest time.Time) []*discordgo.Message {
	out := make([]*discordgo.Message, n)
	for i := 0; i < n; i++ {
		ts := newest.Add(-time.Duration(i) * time.Minute)
		id, _ := strconv.ParseUint(snowflakeAt(ts), 10, 64)
		out[i] = &discordgo.Message{
			ID:        strconv.FormatUint(id+uint64(i%2), 10),
			Content:   "msg",
			Timestamp: ts,
			Author:    &discordgo.User{Username: "user" + strconv.Itoa(i%3)},
		}
	}
	return out
}

func TestDiscordSourcePagesUntilLimit(t *testing.T) {
	newest := time.Date(2025, 5, 22, 12, 0, 0, 0, time.UTC)
	l := &lister{messages: discordMessages(250, newest)}
	src := NewDiscordSource(l)

	got, err := src.Messages(context.Background(), "c1", models.TimeRange{After: newest.Add(-24 * time.Hour)}, 230)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 230 {
		t.Errorf("got %d messages, want 230", len(got))
	}
	if len(l.requests) != 3 {
		t.Errorf("made %d requests, want 3", len(l.requests))
	}
	if l.requests[0] != "" {
		t.Errorf("first request before = %q, want empty", l.requests[0])
	}
}

func TestDiscordSourceStopsAtCutoff(t *testing.T) {
	newest := time.Date(2025, 5, 22, 12, 0, 0, 0, time.UTC)
	l := &lister{messages: discordMessages(300, newest)}
	src := NewDiscordSource(l)

	// Only the newest 30 minutes are wanted.
	got, err := src.Messages(context.Background(), "c1", models.TimeRange{After: newest.Add(-30*time.Minute + time.Second)}, 1000)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 30 {
		t.Errorf("got %d messages, want 30", len(got))
	}
	if len(l.requests) != 1 {
		t.Errorf("made %d requests, want 1", len(l.requests))
	}
}

func TestDiscordSourceStartsBeforeUpperBound(t *testing.T) {
	l := &lister{}
	src := NewDiscordSource(l)
	before := time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC)

	if _, err := src.Messages(context.Background(), "c1", models.TimeRange{Before: before}, 10); err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if l.requests[0] != snowflakeAt(before) {
		t.Errorf("before = %q, want %q", l.requests[0], snowflakeAt(before))
	}
}

func TestDiscordSourceForbidden(t *testing.T) {
	l := &lister{err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}}
	_, err := NewDiscordSource(l).Messages(context.Background(), "c1", models.TimeRange{}, 10)
	if !errors.Is(err, ErrNoReadAccess) {
		t.Errorf("error = %v, want ErrNoReadAccess", err)
	}
}

func TestDisplayNamePrecedence(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.Message
		want string
	}{
		{
			name: "nickname",
			msg: &discordgo.Message{
				Author: &discordgo.User{Username: "u", GlobalName: "Global"},
				Member: &discordgo.Member{Nick: "Nick"},
			},
			want: "Nick",
		},
		{
			name: "global name",
			msg:  &discordgo.Message{Author: &discordgo.User{Username: "u", GlobalName: "Global"}},
			want: "Global",
		},
		{
			name: "username",
			msg:  &discordgo.Message{Author: &discordgo.User{Username: "u"}},
			want: "u",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.msg); got != tt.want {
				t.Errorf("displayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnowflakeRoundTrip(t *testing.T) {
	ts := time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC)
	got, err := discordgo.SnowflakeTimestamp(snowflakeAt(ts))
	if err != nil {
		t.Fatalf("SnowflakeTimestamp() error = %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
}
