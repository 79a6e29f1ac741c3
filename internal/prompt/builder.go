// Package prompt turns a message window into a single backend prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

// DefaultMaxChars is the input budget for the combined message text
const DefaultMaxChars = 150000

// Prompt is a rendered prompt plus what happened to the message text
type Prompt struct {
	Text          string
	Style         string
	Truncated     bool
	OriginalChars int
	KeptChars     int
}

// Builder renders prompts with a fixed character budget
type Builder struct {
	maxChars int
}

// NewBuilder creates a prompt builder. Non-positive budgets use DefaultMaxChars.
func NewBuilder(maxChars int) *Builder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Builder{maxChars: maxChars}
}

// Validate checks a spec without rendering anything
func (b *Builder) Validate(spec models.PromptSpec) error {
	_, err := b.template(spec)
	return err
}

// Build combines the window text with the selected instruction
func (b *Builder) Build(window models.Window, spec models.PromptSpec) (*Prompt, error) {
	tmpl, err := b.template(spec)
	if err != nil {
		return nil, err
	}

	blob := strings.Join(window.Lines(), "\n")
	kept, truncated := TrailingRunes(blob, b.maxChars)

	text, err := mustache.Render(tmpl, map[string]interface{}{
		"channel":     spec.ChannelLabel,
		"messages":    kept,
		"instruction": strings.TrimSpace(spec.CustomInstruction),
		"count":       window.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	return &Prompt{
		Text:          text,
		Style:         spec.StyleLabel(),
		Truncated:     truncated,
		OriginalChars: len([]rune(blob)),
		KeptChars:     len([]rune(kept)),
	}, nil
}

func (b *Builder) template(spec models.PromptSpec) (string, error) {
	if spec.IsCustom() {
		return customTemplate, nil
	}

	style := spec.Style
	if style == "" {
		style = models.StyleComprehensive
	}
	tmpl, ok := styleTemplates[style]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownStyle, style)
	}
	return tmpl, nil
}

// TrailingRunes returns the last max runes of s. Most recent messages sit
// at the end of the blob, so they survive truncation.
func TrailingRunes(s string, max int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}
	return string(runes[len(runes)-max:]), true
}
