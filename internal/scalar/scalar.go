// Package scalar cleans single raw cell values from line-lists into canonical
// primitive forms. Anything that cannot be cleaned is reported as NA rather
// than as an error.
package scalar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// naMarkers are textual spellings of "no value" found in spreadsheets exported
// by district offices.
var naMarkers = map[string]bool{
	"na":     true,
	"n/a":    true,
	"nan":    true,
	"nat":    true,
	"<na>":   true,
	"null":   true,
	"none":   true,
	"nil":    true,
	"-":      true,
	"--":     true,
	"#n/a":   true,
	"(null)": true,
}

// IsNA reports whether v carries no usable value.
func IsNA(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		return s == "" || naMarkers[strings.ToLower(s)]
	case *string:
		return x == nil || IsNA(*x)
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f) || math.IsInf(f, 0)
	case time.Time:
		return x.IsZero()
	case *time.Time:
		return x == nil || x.IsZero()
	}
	return false
}

// Text returns the canonical trimmed text of v. Integral floats are rendered
// without a fractional part so that a numeric cell and its string form clean
// to the same text.
func Text(v any) (string, bool) {
	if IsNA(v) {
		return "", false
	}

	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case *string:
		return strings.TrimSpace(*x), true
	case float64:
		return formatFloat(x), true
	case float32:
		return formatFloat(float64(x)), true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	case *time.Time:
		return x.Format(time.RFC3339), true
	case fmt.Stringer:
		s := strings.TrimSpace(x.String())
		if IsNA(s) {
			return "", false
		}
		return s, true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if IsNA(s) {
		return "", false
	}
	return s, true
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// HasDigit reports whether s contains at least one decimal digit.
func HasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Integer returns v as an integer when it is an integral number, either typed
// or written as a purely numeric string (an optional ".0" suffix is allowed).
func Integer(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float32:
		return integralFloat(float64(x))
	case float64:
		return integralFloat(x)
	}

	s, ok := Text(v)
	if !ok {
		return 0, false
	}
	s = strings.TrimSuffix(s, ".0")
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Digits returns the number of decimal digits in a non-negative integer.
func Digits(n int64) int {
	if n < 0 {
		n = -n
	}
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
