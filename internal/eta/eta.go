// Package eta turns the courier's free-text delivery estimate ("1-2", "2 HARI", "-")
// into a comparable day range.
package eta

import (
	"regexp"
	"strconv"
	"strings"
)

// UnknownDays is the day count used for estimates that carry no number.
const UnknownDays = 9999

// Unknown sorts after every parsable estimate.
var Unknown = Estimate{Min: UnknownDays, Max: UnknownDays}

var (
	rangePattern  = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	singlePattern = regexp.MustCompile(`(\d+)`)
)

// Estimate is a delivery window in days. Max is not guaranteed to be >= Min:
// the upstream range is taken as written.
type Estimate struct {
	Min int
	Max int
}

// Normalize parses raw. Every input maps to an Estimate; unparsable input maps to Unknown.
func Normalize(raw string) Estimate {
	s := strings.TrimSpace(strings.ToLower(raw))

	if m := rangePattern.FindStringSubmatch(s); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo == nil && errHi == nil {
			return Estimate{Min: lo, Max: hi}
		}
	}

	if m := singlePattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return Estimate{Min: v, Max: v}
		}
	}

	return Unknown
}

// Key renders the estimate as a grouping key, e.g. "1-2".
func (e Estimate) Key() string {
	return strconv.Itoa(e.Min) + "-" + strconv.Itoa(e.Max)
}

// Fastest returns the smaller bound.
func (e Estimate) Fastest() int {
	return min(e.Min, e.Max)
}

// IsUnknown reports whether e is the sentinel estimate.
func (e Estimate) IsUnknown() bool {
	return e == Unknown
}
