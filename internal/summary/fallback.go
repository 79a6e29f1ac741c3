package summary

import (
	"fmt"
	"strings"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/dustin/go-humanize"
)

const (
	briefThreshold   = 5
	maxExcerpts      = 3
	maxExcerptRunes  = 100
	maxParticipants  = 5
	excerptEllipsis  = "..."
	unavailableNote  = "⚠️ *Detailed AI summary unavailable - no generation backend is configured*"
	briefDescription = "This was a brief conversation with the following key messages:"
)

// Fallback builds a deterministic summary without any external calls
type Fallback struct{}

// NewFallback creates a fallback summarizer
func NewFallback() *Fallback {
	return &Fallback{}
}

// Summarize never fails. Short windows get message excerpts; longer ones
// get participants and activity figures.
func (f *Fallback) Summarize(window models.Window, channelLabel string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Summary of #%s** (%s messages):\n\n", channelLabel, humanize.Comma(int64(window.Len()))))

	lines := window.Lines()

	if len(lines) <= briefThreshold {
		sb.WriteString(briefDescription)
		for i, line := range lines {
			if i == maxExcerpts {
				break
			}
			sb.WriteString("\n• ")
			sb.WriteString(excerpt(line))
		}
		return sb.String()
	}

	participants := distinctAuthors(window.Messages)
	shown := participants
	if len(shown) > maxParticipants {
		shown = shown[:maxParticipants]
	}

	sb.WriteString(fmt.Sprintf("🗣️ **Participants**: %s", strings.Join(shown, ", ")))
	if extra := len(participants) - len(shown); extra > 0 {
		sb.WriteString(fmt.Sprintf(" (+%d more)", extra))
	}
	sb.WriteString("\n")

	first := window.Messages[0].Timestamp.UTC().Format(models.TimestampLayout)
	last := window.Messages[len(window.Messages)-1].Timestamp.UTC().Format(models.TimestampLayout)
	sb.WriteString(fmt.Sprintf("📅 **Time Range**: %s → %s UTC\n", first, last))
	sb.WriteString(fmt.Sprintf("💬 **Activity Level**: %s messages exchanged\n\n", humanize.Comma(int64(window.Len()))))
	sb.WriteString(unavailableNote)

	return sb.String()
}

// excerpt cuts a line to maxExcerptRunes, marking the cut
func excerpt(line string) string {
	runes := []rune(line)
	if len(runes) <= maxExcerptRunes {
		return line
	}
	return string(runes[:maxExcerptRunes]) + excerptEllipsis
}

// distinctAuthors returns author names in order of first appearance
func distinctAuthors(messages []models.Message) []string {
	seen := make(map[string]bool, len(messages))
	authors := make([]string, 0, len(messages))
	for _, msg := range messages {
		if seen[msg.AuthorName] {
			continue
		}
		seen[msg.AuthorName] = true
		authors = append(authors, msg.AuthorName)
	}
	return authors
}
