// Package model provides domain types shared across packages.
package model

import (
	"time"
)

// PeriodLength is the timeline resolution requested from the API.
type PeriodLength string

// Supported timeline resolutions. Week is the resolution this tool was
// designed around; day and month are accepted but less exercised.
const (
	PeriodDay   PeriodLength = "day"
	PeriodWeek  PeriodLength = "week"
	PeriodMonth PeriodLength = "month"
)

// Valid reports whether p is one of the supported resolutions.
func (p PeriodLength) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// SearchSpec describes one sampling run: what to search for, where, and
// over which date range. It has value semantics: per-query derivations are
// made with WithTerms/WithRange, which copy, so the base spec is never
// mutated mid-run.
type SearchSpec struct {
	Terms        []string
	Region       Region
	PeriodStart  time.Time
	PeriodEnd    time.Time
	PeriodLength PeriodLength
}

// Validate checks the spec before any network activity.
func (s SearchSpec) Validate() error {
	if len(s.Terms) == 0 {
		return &ConfigError{Field: "terms", Reason: "at least one search term is required"}
	}
	for _, t := range s.Terms {
		if t == "" {
			return &ConfigError{Field: "terms", Reason: "search terms must be non-empty"}
		}
	}
	if err := s.Region.Validate(); err != nil {
		return err
	}
	if s.PeriodStart.IsZero() {
		return &ConfigError{Field: "period_start", Reason: "start date is required"}
	}
	if s.PeriodEnd.IsZero() {
		return &ConfigError{Field: "period_end", Reason: "end date is required"}
	}
	if s.PeriodEnd.Before(s.PeriodStart) {
		return &ConfigError{Field: "period_end", Reason: "start of period must be before end of period"}
	}
	if !s.PeriodLength.Valid() {
		return &ConfigError{Field: "period_length", Reason: "must be one of day, week, month"}
	}
	return nil
}

// WithTerms returns a copy of the spec restricted to the given terms.
func (s SearchSpec) WithTerms(terms ...string) SearchSpec {
	out := s
	out.Terms = make([]string, len(terms))
	copy(out.Terms, terms)
	return out
}

// WithRange returns a copy of the spec with the query window overridden.
func (s SearchSpec) WithRange(start, end time.Time) SearchSpec {
	out := s
	out.Terms = make([]string, len(s.Terms))
	copy(out.Terms, s.Terms)
	out.PeriodStart = start
	out.PeriodEnd = end
	return out
}

// SeriesPoint is one observation returned by the upstream API: the raw
// date string as sent on the wire, the parsed day-precision period start,
// and the value.
type SeriesPoint struct {
	Date   string
	Period time.Time
	Value  float64
}

// SampleRow is one row of the flattened output: the i-th retained
// observation for a (term, period) pair. QueryTime is the run start
// instant, constant across all rows of one run.
type SampleRow struct {
	Term      string
	Timestamp time.Time
	Sample    int
	Value     float64
	QueryTime time.Time
}
