package history

import (
	"fmt"
	"time"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

// DefaultMaxRangeDays caps date-range retrieval
const DefaultMaxRangeDays = 90

// Resolve turns a window spec into concrete fetch bounds. It never touches
// the network, so malformed input is rejected before any retrieval.
// The returned notices describe adjustments the caller should surface.
func Resolve(spec models.WindowSpec, now time.Time, maxRangeDays int) (models.TimeRange, []string, error) {
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}

	if spec.Limit <= 0 {
		return models.TimeRange{}, nil, fmt.Errorf("%w: message limit must be positive, got %d", models.ErrInvalidWindow, spec.Limit)
	}

	switch spec.Kind {
	case models.WindowRelative:
		if spec.Hours <= 0 {
			return models.TimeRange{}, nil, fmt.Errorf("%w: hours must be positive, got %d", models.ErrInvalidWindow, spec.Hours)
		}
		if maxHours := maxRangeDays * 24; spec.Hours > maxHours {
			return models.TimeRange{}, nil, fmt.Errorf("%w: hours must be at most %d, got %d", models.ErrInvalidWindow, maxHours, spec.Hours)
		}
		return models.TimeRange{After: now.Add(-time.Duration(spec.Hours) * time.Hour)}, nil, nil

	case models.WindowDateRange:
		return resolveDateRange(spec.StartDate, spec.EndDate, maxRangeDays)

	default:
		return models.TimeRange{}, nil, fmt.Errorf("%w: unknown window kind %d", models.ErrInvalidWindow, spec.Kind)
	}
}

func resolveDateRange(startDate, endDate string, maxRangeDays int) (models.TimeRange, []string, error) {
	start, err := time.ParseInLocation(models.DateLayout, startDate, time.UTC)
	if err != nil {
		return models.TimeRange{}, nil, fmt.Errorf("%w: start date %q", models.ErrInvalidDateFormat, startDate)
	}
	end, err := time.ParseInLocation(models.DateLayout, endDate, time.UTC)
	if err != nil {
		return models.TimeRange{}, nil, fmt.Errorf("%w: end date %q", models.ErrInvalidDateFormat, endDate)
	}
	if end.Before(start) {
		return models.TimeRange{}, nil, fmt.Errorf("%w: %s is before %s", models.ErrInvalidDateRange, endDate, startDate)
	}

	// The end day is included in full.
	before := end.AddDate(0, 0, 1)

	var notices []string
	if earliest := before.AddDate(0, 0, -maxRangeDays); start.Before(earliest) {
		notices = append(notices, fmt.Sprintf(
			"⚠️ Date range limited to the last %d days (%s to %s).",
			maxRangeDays, earliest.Format(models.DateLayout), endDate,
		))
		start = earliest
	}

	// After is exclusive; step back so midnight of the start day is kept.
	return models.TimeRange{After: start.Add(-time.Nanosecond), Before: before}, notices, nil
}
