// Package demographics standardises the patient and case fields of a
// line-list: age, gender, test results and the categorical case attributes.
// Unusable values become NA (ok == false) rather than errors.
package demographics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

// MaxAge is the oldest plausible age in years.
const MaxAge = 105.0

var (
	reAge         = regexp.MustCompile(`^(\d+\.?\d*) *(.*)$`)
	reMonthSuffix = regexp.MustCompile(`^[mM]`)
	reYearsMonths = regexp.MustCompile(`^[yY]\D*(\d{1,2})[mM]`)
)

// Age reads an age in years from entries such as "25", "25 yrs", "6 m" or
// "2y 6m". Months under 13 are converted to years, rounded to 2 places.
func Age(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	}

	s, ok := scalar.Text(v)
	if !ok {
		return 0, false
	}
	m := reAge.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	age, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	unit := m[2]
	switch {
	case reMonthSuffix.MatchString(unit):
		if age < 13 {
			return round2(age / 12), true
		}
	case reYearsMonths.MatchString(unit):
		months, _ := strconv.ParseFloat(reYearsMonths.FindStringSubmatch(unit)[1], 64)
		return age + round2(months/12), true
	}
	return age, true
}

// ValidateAge keeps ages in (0, MaxAge]. Larger values are taken to carry a
// stray trailing digit and are divided by ten; non-positive ages are NA.
func ValidateAge(age float64) (float64, bool) {
	switch {
	case age > 0 && age <= MaxAge:
		return age, true
	case age > MaxAge:
		return math.Floor(age / 10), true
	}
	return 0, false
}

var ageBins = []float64{0, 1, 6, 12, 18, 25, 45, 65, 105}

// AgeRange returns the right-closed bin of a validated age, e.g. "(18, 25]".
func AgeRange(age float64) (string, bool) {
	for i := 1; i < len(ageBins); i++ {
		if age > ageBins[i-1] && age <= ageBins[i] {
			return fmt.Sprintf("(%g, %g]", ageBins[i-1], ageBins[i]), true
		}
	}
	return "", false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Gender values.
const (
	Female        = "FEMALE"
	Male          = "MALE"
	GenderUnknown = "UNKNOWN"
)

var (
	reFemale = regexp.MustCompile(`[fwgFWG]`)
	reMale   = regexp.MustCompile(`^[mbMB]`)
)

// Gender maps free-text gender to FEMALE, MALE or UNKNOWN. Female markers
// (f, w, g anywhere) are checked before male ones.
func Gender(v any) string {
	s, ok := scalar.Text(v)
	if !ok {
		return GenderUnknown
	}
	s = strings.ToUpper(s)
	switch {
	case reFemale.MatchString(s):
		return Female
	case reMale.MatchString(s):
		return Male
	}
	return GenderUnknown
}

// Test result values.
const (
	Positive      = "POSITIVE"
	Negative      = "NEGATIVE"
	ResultUnknown = "UNKNOWN"
)

var (
	reNegative = regexp.MustCompile(`(?i)-ve|neg|negative|no|0`)
	rePositive = regexp.MustCompile(`(?i)ns1|igm|d|yes|\+ve|pos|positive|1`)
)

// TestResult maps a lab result cell to POSITIVE, NEGATIVE or UNKNOWN.
// Negative markers win when both appear.
func TestResult(v any) string {
	s, ok := scalar.Text(v)
	if !ok {
		return ResultUnknown
	}
	switch {
	case reNegative.MatchString(s):
		return Negative
	case rePositive.MatchString(s):
		return Positive
	}
	return ResultUnknown
}

// TestCount returns how many of the standardised results are known.
func TestCount(results ...string) int {
	n := 0
	for _, r := range results {
		if r != ResultUnknown && r != "" {
			n++
		}
	}
	return n
}
