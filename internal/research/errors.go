package research

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFetched marks tool calls that arrived before a fetch. Metrics,
// comparisons, charts and reports operate strictly on cached series.
var ErrNotFetched = errors.New("series not fetched yet")

// NotFetchedError reports which ticker is missing and how to proceed. The
// text is written for the model driving the tools, not just for logs.
type NotFetchedError struct {
	Ticker string
}

func (e *NotFetchedError) Error() string {
	return fmt.Sprintf("no data for %s in this session: call fetch first, then retry", e.Ticker)
}

func (e *NotFetchedError) Unwrap() error { return ErrNotFetched }

// ContextOverflowError wraps a host runtime failure caused by an exhausted
// generation window.
type ContextOverflowError struct {
	Err error
}

func (e *ContextOverflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("context window exhausted: %v", e.Err)
	}
	return "context window exhausted"
}

func (e *ContextOverflowError) Unwrap() error { return e.Err }

// overflowMarkers are matched case-insensitively against foreign error
// strings from runtimes that surface overflow only as text. Bare "context"
// is deliberately absent: it would match ordinary cancellation errors.
var overflowMarkers = []string{
	"context overflow",
	"exceeded context",
	"context window",
	"context length",
	"token limit",
}

// IsContextOverflow reports whether err represents an exhausted generation
// window. The typed error is authoritative; the substring scan is a
// best-effort heuristic for errors from foreign runtimes.
func IsContextOverflow(err error) bool {
	if err == nil {
		return false
	}

	var overflow *ContextOverflowError
	if errors.As(err, &overflow) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range overflowMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
