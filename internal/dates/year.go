package dates

import (
	"errors"
	"fmt"
)

// ErrInvalidYear is returned when a YearCorrector cannot be built.
var ErrInvalidYear = errors.New("invalid target year")

const (
	minYear = 1900
	maxYear = 9999
)

// YearCorrector forces dates into the reporting year of a line-list.
type YearCorrector struct {
	target int
	strict bool
}

// NewYearCorrector returns a corrector for the given reporting year. In strict
// mode every date is forced to target, including December dates from the
// previous year.
func NewYearCorrector(target int, strict bool) (*YearCorrector, error) {
	if target < minYear || target > maxYear {
		return nil, fmt.Errorf("%w: %d not in %d-%d", ErrInvalidYear, target, minYear, maxYear)
	}
	return &YearCorrector{target: target, strict: strict}, nil
}

// YearCorrectorFor takes the target year from a reference date, typically the
// sample collection date of the same record.
func YearCorrectorFor(ref Date, strict bool) (*YearCorrector, error) {
	if !ref.Valid {
		return nil, fmt.Errorf("%w: null reference date", ErrInvalidYear)
	}
	return NewYearCorrector(ref.Year(), strict)
}

// Target returns the reporting year.
func (c *YearCorrector) Target() int {
	return c.target
}

// Correct returns d with its year replaced by the target year, unless d is a
// December date exactly one year before the target (carry-over from the
// previous season). A 29 February moved into a non-leap year becomes Null.
func (c *YearCorrector) Correct(d Date) Date {
	if !d.Valid || d.Year() == c.target {
		return d
	}

	if !c.strict && d.Month() == 12 && c.target-d.Year() == 1 {
		return d
	}

	return New(c.target, d.Month(), d.Day())
}
