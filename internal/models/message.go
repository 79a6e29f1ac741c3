package models

import (
	"fmt"
	"time"
)

// TimestampLayout is used when rendering messages in date-range mode
const TimestampLayout = "2006-01-02 15:04"

// DateLayout is the accepted format for start/end dates
const DateLayout = "2006-01-02"

// Message represents a single chat message
type Message struct {
	AuthorName string
	Timestamp  time.Time
	Body       string
	Automated  bool
}

// Line renders the message as a single prompt line
func (m Message) Line(timestamped bool) string {
	if timestamped {
		return fmt.Sprintf("%s (%s): %s", m.AuthorName, m.Timestamp.UTC().Format(TimestampLayout), m.Body)
	}
	return fmt.Sprintf("%s: %s", m.AuthorName, m.Body)
}

// TimeRange bounds a history fetch. Both ends are exclusive; a zero Before
// means "up to now".
type TimeRange struct {
	After  time.Time
	Before time.Time
}

// Contains reports whether t falls strictly inside the range
func (r TimeRange) Contains(t time.Time) bool {
	if !t.After(r.After) {
		return false
	}
	if !r.Before.IsZero() && !t.Before(r.Before) {
		return false
	}
	return true
}

// Window is a chronologically ordered (oldest first) set of human messages
type Window struct {
	Messages    []Message
	Timestamped bool
	Range       TimeRange
}

// Len returns the number of messages in the window
func (w Window) Len() int {
	return len(w.Messages)
}

// Empty reports whether there is nothing to summarize
func (w Window) Empty() bool {
	return len(w.Messages) == 0
}

// Lines renders every message in order
func (w Window) Lines() []string {
	lines := make([]string, len(w.Messages))
	for i, msg := range w.Messages {
		lines[i] = msg.Line(w.Timestamped)
	}
	return lines
}

// WindowKind selects how a window is bounded
type WindowKind int

const (
	// WindowRelative looks back a number of hours from now
	WindowRelative WindowKind = iota
	// WindowDateRange covers whole calendar days
	WindowDateRange
)

// WindowSpec describes which messages to fetch
type WindowSpec struct {
	Kind      WindowKind
	Hours     int
	StartDate string // YYYY-MM-DD, date-range mode only
	EndDate   string // YYYY-MM-DD, inclusive
	Limit     int
}

// RelativeWindow builds a relative-window spec
func RelativeWindow(hours, limit int) WindowSpec {
	return WindowSpec{Kind: WindowRelative, Hours: hours, Limit: limit}
}

// DateRangeWindow builds a date-range spec
func DateRangeWindow(start, end string, limit int) WindowSpec {
	return WindowSpec{Kind: WindowDateRange, StartDate: start, EndDate: end, Limit: limit}
}
