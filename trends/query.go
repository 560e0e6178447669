package trends

import (
	"net/url"

	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
)

// buildQuery translates a request into timelinesForHealth query parameters.
// The region maps to exactly one of three geo-restriction parameters:
// country for a bare country code, region for subdivision code(s), dma for
// a media-market integer. The API cannot mix modes in one call.
func buildQuery(req Request) (url.Values, error) {
	if !req.Resolution.Valid() {
		return nil, &model.ConfigError{Field: "period_length", Reason: "must be one of day, week, month"}
	}
	if err := req.Region.Validate(); err != nil {
		return nil, err
	}

	v := url.Values{}
	for _, term := range req.Terms {
		v.Add("terms", term)
	}
	switch req.Region.Mode() {
	case model.ModeCountry:
		v.Set("geoRestriction.country", req.Region.Restriction())
	case model.ModeSubdivision:
		v.Set("geoRestriction.region", req.Region.Restriction())
	case model.ModeDMA:
		v.Set("geoRestriction.dma", req.Region.Restriction())
	}
	v.Set("time.startDate", dates.FormatISO(req.StartDate))
	v.Set("time.endDate", dates.FormatISO(req.EndDate))
	v.Set("timelineResolution", string(req.Resolution))
	return v, nil
}
