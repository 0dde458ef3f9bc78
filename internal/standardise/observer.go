package standardise

import (
	"log/slog"
	"time"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Nullification reasons reported to DateNullified.
const (
	ReasonUnparseable = "unparseable"
	ReasonInvalidDay  = "invalid_day"
	ReasonOutOfBounds = "out_of_bounds"
)

// Observer receives the repairs and losses made while standardising a
// record. Implementations must be safe for concurrent use.
type Observer interface {
	DateRepaired(recordID, pair, strategy string)
	DateNullified(recordID, field, reason string)
	LocationResolved(recordID string, level regions.Level, resolved bool)
	RecordStandardised(recordID string, elapsed time.Duration)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) DateRepaired(string, string, string) {}
func (NopObserver) DateNullified(string, string, string) {}
func (NopObserver) LocationResolved(string, regions.Level, bool) {}
func (NopObserver) RecordStandardised(string, time.Duration) {}

// LogObserver logs repairs at debug level and losses at info level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) DateRepaired(recordID, pair, strategy string) {
	o.Logger.Debug("date repaired", "record_id", recordID, "pair", pair, "strategy", strategy)
}

func (o LogObserver) DateNullified(recordID, field, reason string) {
	o.Logger.Info("date nullified", "record_id", recordID, "field", field, "reason", reason)
}

func (o LogObserver) LocationResolved(recordID string, level regions.Level, resolved bool) {
	if !resolved {
		o.Logger.Info("name unresolved", "record_id", recordID, "level", level)
	}
}

func (o LogObserver) RecordStandardised(string, time.Duration) {}

// Observers fans every event out to each member.
type Observers []Observer

func (obs Observers) DateRepaired(recordID, pair, strategy string) {
	for _, o := range obs {
		o.DateRepaired(recordID, pair, strategy)
	}
}

func (obs Observers) DateNullified(recordID, field, reason string) {
	for _, o := range obs {
		o.DateNullified(recordID, field, reason)
	}
}

func (obs Observers) LocationResolved(recordID string, level regions.Level, resolved bool) {
	for _, o := range obs {
		o.LocationResolved(recordID, level, resolved)
	}
}

func (obs Observers) RecordStandardised(recordID string, elapsed time.Duration) {
	for _, o := range obs {
		o.RecordStandardised(recordID, elapsed)
	}
}
