package sampler

import (
	"time"

	"github.com/pewresearch/search-sampler/model"
)

// PeriodSamples accumulates observed values per canonical period for one
// term. Value lists are append-only and preserve arrival order; duplicates
// are expected since overlapping windows revisit the same periods.
// Uses a map for O(1) lookup and a slice for insertion order.
type PeriodSamples struct {
	values map[time.Time][]float64
	order  []time.Time
}

// NewPeriodSamples returns an empty accumulator.
func NewPeriodSamples() *PeriodSamples {
	return &PeriodSamples{values: make(map[time.Time][]float64)}
}

// Accumulate appends each point's value to its period's sample list. When
// allowed is non-empty, points for periods outside allowed are discarded;
// a sliding-window query can return boundary periods the canonical set
// does not contain, and those must not pollute the accumulator. With an
// empty allowed set every point is kept.
func (s *PeriodSamples) Accumulate(points []model.SeriesPoint, allowed []time.Time) {
	var allowedSet map[time.Time]struct{}
	if len(allowed) > 0 {
		allowedSet = make(map[time.Time]struct{}, len(allowed))
		for _, p := range allowed {
			allowedSet[p] = struct{}{}
		}
	}

	for _, point := range points {
		if allowedSet != nil {
			if _, ok := allowedSet[point.Period]; !ok {
				continue
			}
		}
		s.append(point.Period, point.Value)
	}
}

func (s *PeriodSamples) append(period time.Time, value float64) {
	if _, exists := s.values[period]; !exists {
		s.order = append(s.order, period)
	}
	s.values[period] = append(s.values[period], value)
}

// Periods returns the accumulated periods in first-seen order.
func (s *PeriodSamples) Periods() []time.Time {
	out := make([]time.Time, len(s.order))
	copy(out, s.order)
	return out
}

// Values returns the accumulated values for a period in arrival order.
func (s *PeriodSamples) Values(period time.Time) []float64 {
	return s.values[period]
}
