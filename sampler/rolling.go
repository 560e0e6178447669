// Package sampler implements the rolling-window sampling engine.
//
// The upstream API returns noisy values and does not cache by window
// length, so re-querying the same periods under different window framing
// yields independent-ish observations. One run makes three strictly
// ordered passes: a discovery query to learn the canonical period list,
// one query per period for a guaranteed first observation, then a window
// sliding by 7 days to accumulate more observations, capped at flatten
// time to the requested sample count.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
	"github.com/pewresearch/search-sampler/retry"
	"github.com/pewresearch/search-sampler/trends"
)

// DefaultNumSamples is the number of observations requested per period
// when the caller does not specify one.
const DefaultNumSamples = 5

var (
	// ErrEmptyDiscovery means the discovery query returned no periods, so
	// the canonical period list cannot be established.
	ErrEmptyDiscovery = errors.New("discovery query returned no periods")

	// ErrEmptyPeriod means a per-period query returned no data. The run
	// aborts rather than silently producing a gap, since downstream
	// consumers assume complete per-period sample counts.
	ErrEmptyPeriod = errors.New("period query returned no data")
)

// RollingSampler runs the sampling protocol for one SearchSpec. It holds
// no state across Pull calls; each call is a self-contained run.
type RollingSampler struct {
	client trends.Client
	spec   model.SearchSpec
	policy retry.Policy
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a sampler for the given spec. The spec is validated here,
// before any network activity.
func New(client trends.Client, spec model.SearchSpec) (*RollingSampler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &RollingSampler{
		client: client,
		spec:   spec,
		policy: retry.DefaultPolicy(),
		log:    zerolog.Nop(),
		now:    time.Now,
	}, nil
}

// WithRetryPolicy overrides the retry policy applied to every query.
func (s *RollingSampler) WithRetryPolicy(p retry.Policy) *RollingSampler {
	s.policy = p
	return s
}

// WithLogger sets the sampler's logger.
func (s *RollingSampler) WithLogger(log zerolog.Logger) *RollingSampler {
	s.log = log
	s.policy = s.policy.WithLogger(log)
	return s
}

// WithClock overrides the run-start timestamp source. Used by tests.
func (s *RollingSampler) WithClock(now func() time.Time) *RollingSampler {
	s.now = now
	return s
}

// PullOnce issues a single query over the spec's full range and returns
// the raw per-term series. No rolling protocol is applied.
func (s *RollingSampler) PullOnce(ctx context.Context) ([]trends.Timeline, error) {
	return s.query(ctx, s.spec)
}

// Pull runs the full sampling protocol and returns the flattened rows.
//
// Every emitted row has Sample < numSamples. The converse does not hold
// exactly at numSamples == 2: the sliding window degenerates at width 1,
// so it is widened to 2 and a period can receive one extra observation
// before the cap is applied. That over-sampling is deliberate, inherited
// behavior, not a bug.
//
// All failures are fatal: no partial rows are ever returned.
func (s *RollingSampler) Pull(ctx context.Context, numSamples int) ([]model.SampleRow, error) {
	if numSamples < 1 {
		return nil, &model.ConfigError{Field: "num_samples", Reason: "must be a positive integer"}
	}

	queryTime := s.now()

	// Discovery: one query over the full range, first term only, to learn
	// which periods the API buckets the range into. Computing these
	// locally would have to replicate the API's bucketing rules; asking it
	// directly keeps the canonical list authoritative.
	periods, err := s.discoverPeriods(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info().Strs("terms", s.spec.Terms).Int("periods", len(periods)).Msg("running search terms")

	perTerm := make(map[string]*PeriodSamples)
	var termOrder []string
	collect := func(lines []trends.Timeline, allowed []time.Time) {
		for _, line := range lines {
			acc, ok := perTerm[line.Term]
			if !ok {
				acc = NewPeriodSamples()
				perTerm[line.Term] = acc
				termOrder = append(termOrder, line.Term)
			}
			acc.Accumulate(line.Points, allowed)
		}
	}

	// Per-period pass: one single-period query per canonical period, full
	// term list, unrestricted accumulation. Contributes exactly one
	// observation per (term, period).
	for _, period := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := s.query(ctx, s.spec.WithRange(period, period))
		if err != nil {
			return nil, err
		}
		if emptyLines(lines) {
			return nil, fmt.Errorf("%w: period %s", ErrEmptyPeriod, dates.FormatISO(period))
		}
		collect(lines, nil)
	}
	samplesTaken := 1

	// Windowed pass: slide a window over an extended range, 7 days at a
	// time, keeping only canonical periods. Overlapping windows give
	// interior periods more observations than boundary periods; the
	// flatten cap absorbs the excess.
	windowSize := numSamples - samplesTaken
	if windowSize > 0 {
		if windowSize == 1 {
			// A single-period window degenerates; widen it and let the
			// cap drop the extra observation.
			windowSize = 2
		}
		daysDiff := windowSize * 7
		s.log.Info().Int("window_size", windowSize).Msg("starting windowed pass")

		startingPeriod := periods[0].AddDate(0, 0, -daysDiff)
		endingPeriod := periods[len(periods)-1].AddDate(0, 0, daysDiff)

		currStart := startingPeriod
		currEnd := currStart.AddDate(0, 0, daysDiff)
		for !currEnd.After(endingPeriod) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lines, err := s.query(ctx, s.spec.WithRange(currStart, currEnd))
			if err != nil {
				return nil, err
			}
			collect(lines, periods)

			currStart = currStart.AddDate(0, 0, 7)
			currEnd = currEnd.AddDate(0, 0, 7)
		}
	}

	// Flatten, capping each (term, period) at numSamples observations.
	var rows []model.SampleRow
	for _, term := range termOrder {
		acc := perTerm[term]
		for _, period := range acc.Periods() {
			for i, value := range acc.Values(period) {
				if i >= numSamples {
					break
				}
				rows = append(rows, model.SampleRow{
					Term:      term,
					Timestamp: period,
					Sample:    i,
					Value:     value,
					QueryTime: queryTime,
				})
			}
		}
	}
	return rows, nil
}

// discoverPeriods returns the canonical period list for the spec's range.
func (s *RollingSampler) discoverPeriods(ctx context.Context) ([]time.Time, error) {
	lines, err := s.query(ctx, s.spec.WithTerms(s.spec.Terms[0]))
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 || len(lines[0].Points) == 0 {
		return nil, ErrEmptyDiscovery
	}
	points := lines[0].Points
	periods := make([]time.Time, len(points))
	for i, p := range points {
		periods[i] = p.Period
	}
	return periods, nil
}

// query issues one upstream call under the retry policy.
func (s *RollingSampler) query(ctx context.Context, spec model.SearchSpec) ([]trends.Timeline, error) {
	req := trends.Request{
		Terms:      spec.Terms,
		Region:     spec.Region,
		StartDate:  spec.PeriodStart,
		EndDate:    spec.PeriodEnd,
		Resolution: spec.PeriodLength,
	}
	return retry.Do(ctx, s.policy, func() ([]trends.Timeline, error) {
		return s.client.Timelines(ctx, req)
	})
}

func emptyLines(lines []trends.Timeline) bool {
	for _, line := range lines {
		if len(line.Points) > 0 {
			return false
		}
	}
	return true
}
