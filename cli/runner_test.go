package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pewresearch/search-sampler/config"
	"github.com/pewresearch/search-sampler/model"
)

func TestResolveNumSamplesFlagWins(t *testing.T) {
	settings := config.Settings{Sampler: config.SamplerConfig{NumSamples: 8}}
	opts := DefaultOptions()
	opts.NumSamples = 3

	assert.Equal(t, 3, resolveNumSamples(opts, settings))
}

func TestResolveNumSamplesFallsBackToSettings(t *testing.T) {
	settings := config.Settings{Sampler: config.SamplerConfig{NumSamples: 8}}
	opts := DefaultOptions()

	// Without --samples, the configured value (environment or default)
	// must apply.
	assert.Equal(t, 8, resolveNumSamples(opts, settings))
}

func TestBuildSpec(t *testing.T) {
	opts := DefaultOptions()
	opts.Terms = []string{"cough", "fever"}
	opts.Region = "US-DC"
	opts.PeriodStart = "2017-01-01"
	opts.PeriodEnd = "2017-02-01"

	spec, err := buildSpec(opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"cough", "fever"}, spec.Terms)
	assert.Equal(t, model.Subdivisions("US-DC"), spec.Region)
	assert.Equal(t, time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC), spec.PeriodStart)
	assert.Equal(t, model.PeriodWeek, spec.PeriodLength)
}

func TestBuildSpecRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"malformed region", func(o *Options) { o.Region = "511a" }},
		{"bad start date", func(o *Options) { o.PeriodStart = "Jan 01 2017" }},
		{"bad end date", func(o *Options) { o.PeriodEnd = "2017-13-01" }},
		{"end before start", func(o *Options) { o.PeriodStart = "2017-02-01"; o.PeriodEnd = "2017-01-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Terms = []string{"cough"}
			opts.Region = "US-DC"
			opts.PeriodStart = "2017-01-01"
			opts.PeriodEnd = "2017-02-01"
			tc.mutate(&opts)

			_, err := buildSpec(opts)
			require.Error(t, err)
			var cfgErr *model.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}
