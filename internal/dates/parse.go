package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

// layouts are tried in order before the permissive fallback. Day-first
// numeric forms come first because district line-lists are written that way.
var layouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15:04",
	"2-1-2006 3:04 PM",
	"2/1/2006 3:04 PM",
	"2-1-2006 3:04:05 PM",
	"2/1/2006 3:04:05 PM",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// fractionalSerial is a spreadsheet date-time read as raw text.
var fractionalSerial = regexp.MustCompile(`^\d{4,5}\.\d+$`)

// repeatedSeparators collapses doubled separator artifacts such as "12--05-2023".
var repeatedSeparators = []struct {
	re  *regexp.Regexp
	sep string
}{
	{regexp.MustCompile(`-{2,}`), "-"},
	{regexp.MustCompile(`/{2,}`), "/"},
	{regexp.MustCompile(`\.{2,}`), "."},
	{regexp.MustCompile(`\s{2,}`), " "},
}

// Parse converts a raw cell into a Date. Values without digits, unparseable
// text and impossible dates all yield Null.
func Parse(v any) (d Date) {
	defer func() {
		if recover() != nil {
			d = Null
		}
	}()

	switch x := v.(type) {
	case Date:
		return x
	case *Date:
		if x == nil {
			return Null
		}
		return *x
	case time.Time:
		return Of(x)
	case *time.Time:
		if x == nil {
			return Null
		}
		return Of(*x)
	}

	if scalar.IsNA(v) {
		return Null
	}

	if n, ok := scalar.Integer(v); ok {
		if digits := scalar.Digits(n); n > 0 && digits >= 4 && digits <= 5 {
			return fromSerial(float64(n))
		}
	}
	if f, ok := serial(v); ok {
		return fromSerial(f)
	}

	s, ok := scalar.Text(v)
	if !ok || !scalar.HasDigit(s) {
		return Null
	}
	return parseText(s)
}

// serial reports a non-integral spreadsheet date-time, typed or as text,
// whose day count has 4 or 5 digits.
func serial(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		s, ok := scalar.Text(v)
		if !ok || !fractionalSerial.MatchString(s) {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	}
	if f < 1000 || f >= 100000 {
		return 0, false
	}
	return f, true
}

// fromSerial converts a spreadsheet day count (1900 date system) to a Date.
// The fraction of a day is dropped.
func fromSerial(f float64) Date {
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return Null
	}
	return Of(t)
}

func parseText(s string) Date {
	for _, r := range repeatedSeparators {
		s = r.re.ReplaceAllString(s, r.sep)
	}
	s = strings.Trim(s, " -/.")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return plausible(t)
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return Null
	}
	return plausible(t)
}

func plausible(t time.Time) Date {
	if t.Year() < minYear {
		return Null
	}
	return Of(t)
}

// MustParse is Parse for literals in tests and fixtures. It panics on Null.
func MustParse(s string) Date {
	d := Parse(s)
	if !d.Valid {
		panic("dates: cannot parse " + s)
	}
	return d
}
