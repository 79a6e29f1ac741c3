package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Style represents a named summary template
type Style string

const (
	StyleComprehensive Style = "comprehensive"
	StyleBrief         Style = "brief"
	StyleBullet        Style = "bullet"
	StyleParticipants  Style = "participants"
)

// Styles lists every supported style in display order
var Styles = []Style{StyleComprehensive, StyleBrief, StyleBullet, StyleParticipants}

var styleAliases = map[string]Style{
	"comprehensive": StyleComprehensive,
	"full":          StyleComprehensive,
	"brief":         StyleBrief,
	"short":         StyleBrief,
	"bullet":        StyleBullet,
	"bullets":       StyleBullet,
	"bullet-points": StyleBullet,
	"participants":  StyleParticipants,
	"people":        StyleParticipants,
}

// ParseStyle resolves a user-supplied style name. Empty input selects the
// comprehensive style.
func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StyleComprehensive, nil
	}
	style, ok := styleAliases[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return style, nil
}

// Description returns a one-line explanation shown in help output
func (s Style) Description() string {
	switch s {
	case StyleComprehensive:
		return "topics, decisions, announcements, Q&A and overall tone"
	case StyleBrief:
		return "a short overview of at most 200 words"
	case StyleBullet:
		return "key points as a bullet list"
	case StyleParticipants:
		return "who said what, grouped by participant"
	default:
		return ""
	}
}

// PromptSpec selects the instruction given to the backend. A non-blank
// CustomInstruction takes precedence over Style.
type PromptSpec struct {
	Style             Style
	CustomInstruction string
	ChannelLabel      string
}

// IsCustom reports whether a free-form instruction was supplied
func (p PromptSpec) IsCustom() bool {
	return strings.TrimSpace(p.CustomInstruction) != ""
}

// StyleLabel is the style name recorded in summary headers
func (p PromptSpec) StyleLabel() string {
	if p.IsCustom() {
		return "custom"
	}
	if p.Style == "" {
		return string(StyleComprehensive)
	}
	return string(p.Style)
}

// SummarySource tells where a summary body came from
type SummarySource string

const (
	SourceAI       SummarySource = "ai"
	SourceFallback SummarySource = "fallback"
)

// GeneratedSummary is what the pipeline hands back for delivery
type GeneratedSummary struct {
	ChannelLabel string
	MessageCount int
	Style        string
	GeneratedAt  time.Time
	Source       SummarySource
	Model        string
	FailureNote  string
	Body         string
}

// Render produces the final text, header included
func (s *GeneratedSummary) Render() string {
	var sb strings.Builder

	switch s.Source {
	case SourceAI:
		sb.WriteString(fmt.Sprintf("🤖 **AI Summary of #%s**\n", s.ChannelLabel))
		sb.WriteString(fmt.Sprintf("📊 %s messages analyzed (%s)\n", humanize.Comma(int64(s.MessageCount)), s.Style))
		sb.WriteString(fmt.Sprintf("⏰ Generated at %s UTC\n\n", s.GeneratedAt.UTC().Format(TimestampLayout)))
	default:
		if s.FailureNote != "" {
			sb.WriteString(fmt.Sprintf("❌ **Error generating AI summary**: %s\n\n", s.FailureNote))
		}
	}

	sb.WriteString(s.Body)
	return sb.String()
}
