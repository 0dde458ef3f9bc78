package standardise

import (
	"time"

	"github.com/dsih-artpark/epipipeline-v2/internal/config"
	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/normalize"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Options configure a Standardiser.
type Options struct {
	StateID    regions.ID
	Thresholds matcher.Thresholds
	Aliases    []normalize.Alias // nil means normalize.DefaultAliases

	MaxGapDays int
	Bounds     dates.Bounds
	// FloatingCeiling replaces the ceiling of Bounds with the date passed to
	// Standardiser.At, for long-running callers with no fixed max date.
	FloatingCeiling bool
	// TargetYear of zero takes the target from the first of each record's
	// sample, result and symptom dates that lies inside Bounds, else from
	// the ceiling.
	TargetYear int
	LimitYear  bool

	// StringFields are free-text columns cleaned with normalize.CleanText.
	StringFields    []string
	AddressFallback bool
	Workers         int

	Cleanup config.CleanupSettings
}

// DefaultOptions returns options with the default thresholds and max gap
// and a ceiling of now.
func DefaultOptions(now time.Time) Options {
	b, _ := dates.NewBounds(dates.Null, dates.Null, now)
	return Options{
		StateID:    regions.Unresolved,
		Thresholds: matcher.DefaultThresholds(),
		MaxGapDays: dates.DefaultMaxGap,
		Bounds:     b,
		Workers:    1,
	}
}

// OptionsFromSettings converts validated settings. now is the ceiling when
// no max date is configured.
func OptionsFromSettings(s *config.Settings, now time.Time) (Options, error) {
	b, err := s.Bounds(now)
	if err != nil {
		return Options{}, err
	}
	return Options{
		StateID:         s.StateID(),
		Thresholds:      s.Thresholds,
		Aliases:         s.Aliases,
		MaxGapDays:      s.Dates.MaxGapDays,
		Bounds:          b,
		FloatingCeiling: s.Dates.MaxDate == "",
		TargetYear:      s.Dates.TargetYear,
		LimitYear:       s.Dates.LimitYear,
		StringFields:    s.StringFields,
		AddressFallback: s.AddressFallback,
		Workers:         s.Workers,
		Cleanup:         s.Cleanup,
	}, nil
}
