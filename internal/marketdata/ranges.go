package marketdata

import (
	"fmt"
	"strings"
)

// TimeRange is the coarse history window selector exposed to research tools.
type TimeRange string

const (
	Range1M TimeRange = "1M"
	Range3M TimeRange = "3M"
	Range6M TimeRange = "6M"
	Range1Y TimeRange = "1Y"
	Range5Y TimeRange = "5Y"
)

// DefaultRange is used when a tool call omits the range.
const DefaultRange = Range3M

var rangeDays = map[TimeRange]int{
	Range1M: 30,
	Range3M: 91,
	Range6M: 182,
	Range1Y: 365,
	Range5Y: 1825,
}

// ParseTimeRange accepts the range selector case-insensitively.
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid time range %q (want 1M, 3M, 6M, 1Y or 5Y)", s)
	}
	return r, nil
}

func (r TimeRange) Valid() bool {
	_, ok := rangeDays[r]
	return ok
}

// Days is the calendar span covered by the range.
func (r TimeRange) Days() int { return rangeDays[r] }

// Weekly reports whether the range uses weekly sampling. Daily payloads for
// six months and beyond exceed free-tier response limits, so long ranges
// sample weekly.
func (r TimeRange) Weekly() bool {
	return r == Range6M || r == Range1Y || r == Range5Y
}
