// Package summary runs the fetch → prompt → generate → chunk pipeline.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chihoong/discord-summarizer-bot/internal/chunk"
	"github.com/chihoong/discord-summarizer-bot/internal/history"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/chihoong/discord-summarizer-bot/internal/prompt"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmptyWindowMessage is the whole response when nothing was fetched
const EmptyWindowMessage = "No messages found in the specified time period."

// TimeoutMessage replaces the summary when generation runs out of time
const TimeoutMessage = "⏱️ Summary generation timed out. Try a smaller range or a lower message limit."

// WindowFetcher retrieves message windows
type WindowFetcher interface {
	Fetch(ctx context.Context, channelID string, rng models.TimeRange, limit int, timestamped bool) models.Window
}

// Generator produces summary text
type Generator interface {
	Available() bool
	Generate(ctx context.Context, prompt string) *models.GenerationResult
}

// State is where an invocation ended
type State string

const (
	StateEmpty     State = "empty"
	StateGenerated State = "generated"
	StateFallback  State = "fallback"
	StateTimedOut  State = "timed_out"
)

// Request is one summarize invocation
type Request struct {
	ChannelID    string
	ChannelLabel string
	Window       models.WindowSpec
	Prompt       models.PromptSpec

	// Announce is sent through Notify once the request has been validated,
	// right before retrieval starts. Optional.
	Announce string

	// Notify receives progress and adjustment notices. Optional.
	Notify func(string)
}

func (r Request) notify(msg string) {
	if r.Notify != nil {
		r.Notify(msg)
	}
}

// Outcome is everything the caller needs to deliver a response
type Outcome struct {
	InvocationID string
	State        State
	MessageCount int
	Summary      *models.GeneratedSummary
	Text         string
	Chunks       []chunk.Chunk
	Notices      []string
}

// Deps are the collaborators a pipeline is built from
type Deps struct {
	Fetcher      WindowFetcher
	Generator    Generator
	Builder      *prompt.Builder
	Fallback     *Fallback
	Chunker      *chunk.Chunker
	MaxRangeDays int
	Now          func() time.Time
}

// Pipeline runs a single summarize invocation. Build one per command.
type Pipeline struct {
	fetcher      WindowFetcher
	generator    Generator
	builder      *prompt.Builder
	fallback     *Fallback
	chunker      *chunk.Chunker
	maxRangeDays int
	now          func() time.Time
	logger       zerolog.Logger
}

// NewPipeline creates a pipeline, filling unset optional deps with defaults
func NewPipeline(deps Deps, logger zerolog.Logger) *Pipeline {
	p := &Pipeline{
		fetcher:      deps.Fetcher,
		generator:    deps.Generator,
		builder:      deps.Builder,
		fallback:     deps.Fallback,
		chunker:      deps.Chunker,
		maxRangeDays: deps.MaxRangeDays,
		now:          deps.Now,
		logger:       logger.With().Str("component", "pipeline").Logger(),
	}
	if p.builder == nil {
		p.builder = prompt.NewBuilder(prompt.DefaultMaxChars)
	}
	if p.fallback == nil {
		p.fallback = NewFallback()
	}
	if p.chunker == nil {
		p.chunker = chunk.ForDiscord()
	}
	if p.maxRangeDays <= 0 {
		p.maxRangeDays = history.DefaultMaxRangeDays
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run executes the pipeline. Only malformed input returns an error, and it
// does so before any history is fetched. Backend trouble ends in a fallback
// summary or the timeout message.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{InvocationID: uuid.NewString()}
	logger := p.logger.With().
		Str("invocation_id", out.InvocationID).
		Str("channel_id", req.ChannelID).
		Str("channel", req.ChannelLabel).
		Logger()

	now := p.now()

	rng, notices, err := history.Resolve(req.Window, now, p.maxRangeDays)
	if err != nil {
		logger.Info().Err(err).Msg("Rejected window")
		return nil, err
	}
	if err := p.builder.Validate(req.Prompt); err != nil {
		logger.Info().Err(err).Msg("Rejected prompt spec")
		return nil, err
	}

	if req.Announce != "" {
		req.notify(req.Announce)
	}
	for _, notice := range notices {
		out.Notices = append(out.Notices, notice)
		req.notify(notice)
	}

	timestamped := req.Window.Kind == models.WindowDateRange
	window := p.fetcher.Fetch(ctx, req.ChannelID, rng, req.Window.Limit, timestamped)
	out.MessageCount = window.Len()

	if window.Empty() {
		logger.Info().Msg("No messages in window")
		out.State = StateEmpty
		p.finish(out, EmptyWindowMessage)
		return out, nil
	}

	req.notify(fmt.Sprintf("🤖 Analyzing %s messages...", humanize.Comma(int64(window.Len()))))

	summary := &models.GeneratedSummary{
		ChannelLabel: req.ChannelLabel,
		MessageCount: window.Len(),
		Style:        req.Prompt.StyleLabel(),
	}

	if !p.generator.Available() {
		logger.Info().Int("message_count", window.Len()).Msg("No generation backend, using fallback")
		p.useFallback(out, summary, window, "")
		return out, nil
	}

	built, err := p.builder.Build(window, req.Prompt)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build prompt, using fallback")
		p.useFallback(out, summary, window, err.Error())
		return out, nil
	}
	if built.Truncated {
		logger.Warn().
			Int("original_chars", built.OriginalChars).
			Int("kept_chars", built.KeptChars).
			Msg("Message text truncated to fit the input budget")
		notice := fmt.Sprintf("✂️ Conversation too long, only the most recent %s characters were analyzed.", humanize.Comma(int64(built.KeptChars)))
		out.Notices = append(out.Notices, notice)
		req.notify(notice)
	}

	result := p.generator.Generate(ctx, built.Text)

	switch {
	case !result.Failed():
		summary.Source = models.SourceAI
		summary.Model = result.Model
		summary.Body = result.Text
		summary.GeneratedAt = p.now()
		out.State = StateGenerated
		out.Summary = summary
		p.finish(out, summary.Render())

		logger.Info().
			Int("message_count", window.Len()).
			Str("model", result.Model).
			Int("execution_time_ms", result.ExecutionTimeMs).
			Int("chunks", len(out.Chunks)).
			Msg("Summary generated")

	case errors.Is(result.Err, models.ErrGenerationTimeout):
		logger.Warn().Err(result.Err).Msg("Generation timed out")
		out.State = StateTimedOut
		p.finish(out, TimeoutMessage)

	default:
		logger.Warn().Err(result.Err).Msg("Generation failed, using fallback")
		p.useFallback(out, summary, window, result.Err.Error())
	}

	return out, nil
}

func (p *Pipeline) useFallback(out *Outcome, summary *models.GeneratedSummary, window models.Window, failure string) {
	summary.Source = models.SourceFallback
	summary.FailureNote = failure
	summary.Body = p.fallback.Summarize(window, summary.ChannelLabel)
	summary.GeneratedAt = p.now()
	out.State = StateFallback
	out.Summary = summary
	p.finish(out, summary.Render())
}

func (p *Pipeline) finish(out *Outcome, text string) {
	out.Text = text
	out.Chunks = p.chunker.Split(text)
}
