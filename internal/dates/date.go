// Package dates reconciles the event dates of a line-list record: parsing the
// raw cell, forcing the reporting year, repairing day/month transpositions
// between consecutive events and dropping dates outside the admissible window.
//
// Every operation is a pure function of its inputs. Malformed or implausible
// dates become Null; they are never reported as errors.
package dates

import (
	"bytes"
	"encoding/json"
	"time"
)

// ISOLayout is the export format of standardised dates.
const ISOLayout = "2006-01-02T15:04:05Z"

// Date is a nullable calendar date held as midnight UTC.
type Date struct {
	Time  time.Time
	Valid bool
}

// Null is the absent date.
var Null = Date{}

// Of returns the calendar date of t, dropping the time of day.
func Of(t time.Time) Date {
	if t.IsZero() {
		return Null
	}
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// New returns the given calendar date, or Null when the day does not exist
// in that month (time.Date would silently roll it over).
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Null
	}
	return Date{Time: t, Valid: true}
}

// IsNull reports whether d holds no date.
func (d Date) IsNull() bool {
	return !d.Valid
}

func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }

// Before reports whether d is strictly before o. Null dates are never before
// or after anything.
func (d Date) Before(o Date) bool {
	return d.Valid && o.Valid && d.Time.Before(o.Time)
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Valid && o.Valid && d.Time.After(o.Time)
}

// Equal reports whether both dates are null or both hold the same day.
func (d Date) Equal(o Date) bool {
	if !d.Valid || !o.Valid {
		return d.Valid == o.Valid
	}
	return d.Time.Equal(o.Time)
}

// DaysUntil returns the whole number of days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time).Hours() / 24)
}

// AddDays shifts d by n days. Null stays Null.
func (d Date) AddDays(n int) Date {
	if !d.Valid {
		return Null
	}
	return Date{Time: d.Time.AddDate(0, 0, n), Valid: true}
}

// swapDayMonth reinterprets d with its day and month exchanged. The caller
// guarantees the day is a valid month number.
func (d Date) swapDayMonth() Date {
	return New(d.Year(), time.Month(d.Day()), int(d.Month()))
}

// String renders d in ISOLayout, or "" for Null.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(ISOLayout)
}

// MarshalJSON encodes Null as JSON null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or any value Parse understands.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Null
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Parse(raw)
	return nil
}

// First returns the first non-null date, or Null.
func First(ds ...Date) Date {
	for _, d := range ds {
		if d.Valid {
			return d
		}
	}
	return Null
}
