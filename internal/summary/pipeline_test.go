package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chihoong/discord-summarizer-bot/internal/chunk"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/chihoong/discord-summarizer-bot/internal/prompt"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2025, 5, 22, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	window models.Window
	calls  int
	rng    models.TimeRange
}

func (f *fakeFetcher) Fetch(ctx context.Context, channelID string, rng models.TimeRange, limit int, timestamped bool) models.Window {
	f.calls++
	f.rng = rng
	w := f.window
	w.Timestamped = timestamped
	return w
}

type fakeGenerator struct {
	available bool
	result    *models.GenerationResult
	calls     int
	prompt    string
}

func (g *fakeGenerator) Available() bool { return g.available }

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) *models.GenerationResult {
	g.calls++
	g.prompt = prompt
	return g.result
}

func newTestPipeline(f WindowFetcher, g Generator, deps Deps) *Pipeline {
	deps.Fetcher = f
	deps.Generator = g
	deps.Now = func() time.Time { return fixedNow }
	return NewPipeline(deps, zerolog.Nop())
}

func relativeRequest() Request {
	return Request{
		ChannelID:    "c1",
		ChannelLabel: "general",
		Window:       models.RelativeWindow(24, 100),
		Prompt:       models.PromptSpec{Style: models.StyleComprehensive, ChannelLabel: "general"},
	}
}

func TestRunEmptyWindow(t *testing.T) {
	f := &fakeFetcher{}
	g := &fakeGenerator{available: true}

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateEmpty {
		t.Errorf("State = %s, want empty", out.State)
	}
	if out.Text != EmptyWindowMessage || len(out.Chunks) != 1 || out.Chunks[0].Render() != EmptyWindowMessage {
		t.Errorf("output = %q, want %q", out.Text, EmptyWindowMessage)
	}
	if g.calls != 0 {
		t.Errorf("generator called %d times, want 0", g.calls)
	}
}

func TestRunWithoutBackendUsesFallback(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(8, 3, 20)}
	g := &fakeGenerator{available: false}

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateFallback || out.Summary.Source != models.SourceFallback {
		t.Errorf("State = %s, Source = %s", out.State, out.Summary.Source)
	}
	if g.calls != 0 {
		t.Errorf("generator called %d times, want 0", g.calls)
	}
	if !strings.Contains(out.Text, "**Summary of #general** (8 messages)") {
		t.Errorf("unexpected text:\n%s", out.Text)
	}
	if strings.Contains(out.Text, "Error generating") {
		t.Errorf("fallback without backend must not report an error:\n%s", out.Text)
	}
}

func TestRunGenerated(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(3, 2, 10)}
	g := &fakeGenerator{available: true, result: &models.GenerationResult{Text: "## Topics\n- testing", Model: "m1"}}

	var notices []string
	req := relativeRequest()
	req.Announce = "📊 Fetching messages..."
	req.Notify = func(s string) { notices = append(notices, s) }

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateGenerated {
		t.Fatalf("State = %s, want generated", out.State)
	}
	if !strings.Contains(out.Text, "AI Summary of #general") || !strings.Contains(out.Text, "## Topics\n- testing") {
		t.Errorf("unexpected text:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "Generated at 2025-05-22 12:00 UTC") {
		t.Errorf("missing generation timestamp:\n%s", out.Text)
	}
	if !strings.Contains(g.prompt, "user0: xxxxxxxxxx") {
		t.Errorf("prompt does not contain messages:\n%s", g.prompt)
	}
	if len(notices) != 2 || notices[0] != req.Announce || !strings.Contains(notices[1], "Analyzing 3 messages") {
		t.Errorf("notices = %v", notices)
	}
	if want := fixedNow.Add(-24 * time.Hour); !f.rng.After.Equal(want) {
		t.Errorf("fetch After = %v, want %v", f.rng.After, want)
	}
}

func TestRunBackendFailureFallsBack(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(8, 3, 20)}
	g := &fakeGenerator{available: true, result: &models.GenerationResult{
		Err: fmt.Errorf("%w: status 429 rate_limit_error", models.ErrBackendCallFailed),
	}}

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateFallback {
		t.Fatalf("State = %s, want fallback", out.State)
	}
	if !strings.HasPrefix(out.Text, "❌ **Error generating AI summary**") || !strings.Contains(out.Text, "rate_limit_error") {
		t.Errorf("fallback does not carry the failure:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "**Participants**") {
		t.Errorf("fallback body missing:\n%s", out.Text)
	}
}

func TestRunTimeout(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(8, 3, 20)}
	g := &fakeGenerator{available: true, result: &models.GenerationResult{
		Err: fmt.Errorf("%w after 2m0s: context deadline exceeded", models.ErrGenerationTimeout),
	}}

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateTimedOut {
		t.Errorf("State = %s, want timed_out", out.State)
	}
	if out.Text != TimeoutMessage {
		t.Errorf("Text = %q, want timeout message", out.Text)
	}
	if strings.Contains(out.Text, "Summary of #") {
		t.Errorf("timeout must not produce a fallback summary")
	}
}

func TestRunValidationHappensBeforeFetch(t *testing.T) {
	tests := []struct {
		name string
		req  func() Request
		want error
	}{
		{
			name: "bad date",
			req: func() Request {
				r := relativeRequest()
				r.Window = models.DateRangeWindow("2025/05/20", "2025-05-22", 100)
				return r
			},
			want: models.ErrInvalidDateFormat,
		},
		{
			name: "reversed dates",
			req: func() Request {
				r := relativeRequest()
				r.Window = models.DateRangeWindow("2025-05-22", "2025-05-20", 100)
				return r
			},
			want: models.ErrInvalidDateRange,
		},
		{
			name: "unknown style",
			req: func() Request {
				r := relativeRequest()
				r.Prompt.Style = "limerick"
				return r
			},
			want: models.ErrUnknownStyle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{window: makeWindow(3, 1, 5)}
			g := &fakeGenerator{available: true}

			var notices []string
			req := tt.req()
			req.Announce = "📊 Fetching messages..."
			req.Notify = func(s string) { notices = append(notices, s) }

			_, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if f.calls != 0 || g.calls != 0 {
				t.Errorf("fetch calls = %d, generate calls = %d; want none", f.calls, g.calls)
			}
			if len(notices) != 0 {
				t.Errorf("rejected request sent notices: %v", notices)
			}
		})
	}
}

func TestRunDateRangeClampNotice(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(2, 1, 5)}
	g := &fakeGenerator{available: false}

	req := relativeRequest()
	req.Window = models.DateRangeWindow("2025-01-01", "2025-04-30", 100)
	req.Prompt = models.PromptSpec{CustomInstruction: "List decisions", ChannelLabel: "general"}

	out, err := newTestPipeline(f, g, Deps{}).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Notices) != 1 || !strings.Contains(out.Notices[0], "90 days") {
		t.Errorf("Notices = %v", out.Notices)
	}
	if want := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC); !f.rng.Before.Equal(want) {
		t.Errorf("fetch Before = %v, want %v", f.rng.Before, want)
	}
	if !strings.Contains(out.Text, "(2025-05-20 09:00)") {
		t.Errorf("date-range fallback excerpts should carry timestamps:\n%s", out.Text)
	}
}

func TestRunTruncationNoticeAndChunking(t *testing.T) {
	f := &fakeFetcher{window: makeWindow(50, 4, 40)}
	long := strings.Repeat("summary text ", 400)
	g := &fakeGenerator{available: true, result: &models.GenerationResult{Text: long, Model: "m"}}

	out, err := newTestPipeline(f, g, Deps{
		Builder: prompt.NewBuilder(500),
		Chunker: chunk.New(1000),
	}).Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(out.Notices) != 1 || !strings.Contains(out.Notices[0], "500") {
		t.Errorf("Notices = %v", out.Notices)
	}
	if len(out.Chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(out.Chunks))
	}

	var joined strings.Builder
	for _, c := range out.Chunks {
		joined.WriteString(c.Text)
	}
	if joined.String() != out.Text {
		t.Error("chunks do not reproduce the rendered summary")
	}
}

type slowGenerator struct {
	clock *time.Time
}

func (g *slowGenerator) Available() bool { return true }

func (g *slowGenerator) Generate(ctx context.Context, prompt string) *models.GenerationResult {
	*g.clock = g.clock.Add(3 * time.Minute)
	return &models.GenerationResult{Text: "summary", Model: "m"}
}

func TestRunStampsSummaryWhenFinished(t *testing.T) {
	clock := fixedNow
	p := NewPipeline(Deps{
		Fetcher:   &fakeFetcher{window: makeWindow(3, 2, 10)},
		Generator: &slowGenerator{clock: &clock},
		Now:       func() time.Time { return clock },
	}, zerolog.Nop())

	out, err := p.Run(context.Background(), relativeRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := fixedNow.Add(3 * time.Minute); !out.Summary.GeneratedAt.Equal(want) {
		t.Errorf("GeneratedAt = %v, want %v", out.Summary.GeneratedAt, want)
	}
	if !strings.Contains(out.Text, "Generated at 2025-05-22 12:03 UTC") {
		t.Errorf("header does not carry the finish time:\n%s", out.Text)
	}
}
