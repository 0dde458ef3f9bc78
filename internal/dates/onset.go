package dates

import (
	"regexp"
	"strconv"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*days?\b`)

// OnsetFromDuration handles symptom cells written as an illness duration,
// e.g. "5 days", by counting back from the reference date. ok is false when v
// is not a duration; the date is Null when it is one but ref is Null.
func OnsetFromDuration(v any, ref Date) (Date, bool) {
	s, ok := v.(string)
	if !ok || scalar.IsNA(s) {
		return Null, false
	}
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Null, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || !ref.Valid {
		return Null, true
	}
	return ref.AddDays(-n), true
}
