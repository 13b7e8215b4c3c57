package marketdata

import (
	"sort"
	"strings"
)

// Point is one observation in a price series.
type Point struct {
	Date   string  `json:"date"` // 2006-01-02
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Series is a chronologically ascending price history for one ticker, with
// no duplicate dates. Immutable once produced by a source.
type Series struct {
	Ticker string    `json:"ticker"`
	Range  TimeRange `json:"range"`
	Points []Point   `json:"points"`
}

func (s Series) Len() int { return len(s.Points) }

func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

func (s Series) Dates() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// First returns the oldest point, or the zero Point for an empty series.
func (s Series) First() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[0]
}

// Last returns the most recent point, or the zero Point for an empty series.
func (s Series) Last() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)-1]
}

// NormalizeTicker canonicalizes a user-supplied symbol: whitespace trimmed,
// one leading $ stripped, upper-cased. An empty result means the input was
// not a ticker at all.
func NormalizeTicker(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "$")
	t = strings.TrimSpace(t)
	return strings.ToUpper(t)
}

// sortAndDedupe orders points ascending by date and keeps the last entry for
// a repeated date. Provider payloads arrive as unordered maps.
func sortAndDedupe(points []Point) []Point {
	if len(points) == 0 {
		return points
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	out := points[:1]
	for _, p := range points[1:] {
		if p.Date == out[len(out)-1].Date {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
