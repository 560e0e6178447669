// Package dates provides parsing and formatting for the date formats used
// on the wire: the API emits day-precision ("Jan 2 2006") or month-precision
// ("Jan 2006") strings depending on resolution, and accepts ISO dates
// ("2006-01-02") in query parameters.
package dates

import (
	"fmt"
	"time"
)

const (
	// ISO is the layout for query parameters and persisted timestamps.
	ISO = "2006-01-02"

	layoutDay   = "Jan 2 2006"
	layoutMonth = "Jan 2006"
)

// ParsePoint parses an API point date in either of the two wire layouts,
// day-precision first. Exactly these two layouts are accepted; anything
// else is an error so upstream format drift surfaces immediately.
func ParsePoint(s string) (time.Time, error) {
	if t, err := time.Parse(layoutDay, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(layoutMonth, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized point date %q", s)
}

// ParseISO parses a YYYY-MM-DD date.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISO, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatISO renders a date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(ISO)
}
