package dates

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidBounds is returned for a floor that lies after the ceiling.
var ErrInvalidBounds = errors.New("invalid date bounds")

// Bounds is the admissible window of event dates. A null Floor means no lower
// limit. The ceiling is the caller's notion of "now", never a clock read.
type Bounds struct {
	Floor   Date
	Ceiling Date
}

// NewBounds returns the window [floor, ceiling]. A null ceiling defaults to
// the calendar date of now.
func NewBounds(floor, ceiling Date, now time.Time) (Bounds, error) {
	if !ceiling.Valid {
		ceiling = Of(now)
	}
	b := Bounds{Floor: floor, Ceiling: ceiling}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// Validate reports a floor after the ceiling.
func (b Bounds) Validate() error {
	if b.Floor.After(b.Ceiling) {
		return fmt.Errorf("%w: floor %s after ceiling %s", ErrInvalidBounds, b.Floor, b.Ceiling)
	}
	return nil
}

// Contains reports whether d is non-null and inside the window.
func (b Bounds) Contains(d Date) bool {
	if !d.Valid {
		return false
	}
	if b.Floor.Valid && d.Before(b.Floor) {
		return false
	}
	if b.Ceiling.Valid && d.After(b.Ceiling) {
		return false
	}
	return true
}

// Check returns d when it lies in the window and Null otherwise.
func (b Bounds) Check(d Date) Date {
	if !b.Contains(d) {
		return Null
	}
	return d
}
