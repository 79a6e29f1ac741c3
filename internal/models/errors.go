package models

import "errors"

// Input validation errors. These are reported to the user before any
// history is fetched.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDateRange  = errors.New("end date is before start date")
	ErrInvalidWindow     = errors.New("invalid time window")
	ErrUnknownChannel    = errors.New("channel not found")
	ErrNotATextChannel   = errors.New("not a text channel")
	ErrUnknownStyle      = errors.New("unknown summary style")
)

// Generation errors. These never reach the user as-is; the pipeline turns
// them into a fallback summary or the timeout message.
var (
	ErrBackendUnavailable = errors.New("generation backend not configured")
	ErrBackendCallFailed  = errors.New("generation backend call failed")
	ErrGenerationTimeout  = errors.New("generation timed out")
)
