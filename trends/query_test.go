package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pewresearch/search-sampler/model"
)

func weekRequest(region model.Region, terms ...string) Request {
	return Request{
		Terms:      terms,
		Region:     region,
		StartDate:  time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2017, time.January, 31, 0, 0, 0, 0, time.UTC),
		Resolution: model.PeriodWeek,
	}
}

func TestBuildQueryCountry(t *testing.T) {
	v, err := buildQuery(weekRequest(model.Country("US"), "flu"))
	require.NoError(t, err)

	assert.Equal(t, []string{"flu"}, v["terms"])
	assert.Equal(t, "US", v.Get("geoRestriction.country"))
	assert.Empty(t, v.Get("geoRestriction.region"))
	assert.Empty(t, v.Get("geoRestriction.dma"))
	assert.Equal(t, "2017-01-01", v.Get("time.startDate"))
	assert.Equal(t, "2017-01-31", v.Get("time.endDate"))
	assert.Equal(t, "week", v.Get("timelineResolution"))
}

func TestBuildQuerySubdivision(t *testing.T) {
	v, err := buildQuery(weekRequest(model.Subdivisions("US-DC"), "cough", "fever"))
	require.NoError(t, err)

	assert.Equal(t, []string{"cough", "fever"}, v["terms"])
	assert.Equal(t, "US-DC", v.Get("geoRestriction.region"))
	assert.Empty(t, v.Get("geoRestriction.country"))
}

func TestBuildQuerySubdivisionList(t *testing.T) {
	v, err := buildQuery(weekRequest(model.Subdivisions("US-CA", "US-NY"), "flu"))
	require.NoError(t, err)

	// Multiple codes are joined as a quoted comma list.
	assert.Equal(t, "'US-CA', 'US-NY'", v.Get("geoRestriction.region"))
}

func TestBuildQueryDMA(t *testing.T) {
	v, err := buildQuery(weekRequest(model.DMA(511), "flu"))
	require.NoError(t, err)

	assert.Equal(t, "511", v.Get("geoRestriction.dma"))
	assert.Empty(t, v.Get("geoRestriction.country"))
	assert.Empty(t, v.Get("geoRestriction.region"))
}

func TestBuildQueryInvalidRegion(t *testing.T) {
	_, err := buildQuery(weekRequest(model.Region{}, "flu"))
	require.Error(t, err)

	var cfgErr *model.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBuildQueryInvalidResolution(t *testing.T) {
	req := weekRequest(model.Country("US"), "flu")
	req.Resolution = "fortnight"
	_, err := buildQuery(req)
	require.Error(t, err)

	var cfgErr *model.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
