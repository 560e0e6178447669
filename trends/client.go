// Package trends provides the client for the Google Trends Health API
// (getTimelinesForHealth). The client is a thin transport: it maps a
// Request to one REST call and parses the response. Retry and sampling
// policy live above it.
package trends

import (
	"context"
	"time"

	"github.com/pewresearch/search-sampler/model"
)

// Request is one timelinesForHealth query.
type Request struct {
	Terms      []string
	Region     model.Region
	StartDate  time.Time
	EndDate    time.Time
	Resolution model.PeriodLength
}

// Timeline is the response series for one requested term, in API order.
type Timeline struct {
	Term   string
	Points []model.SeriesPoint
}

// Client executes timeline queries. Implemented by RESTClient; tests
// substitute fakes. Any error returned is treated as transient by callers.
type Client interface {
	Timelines(ctx context.Context, req Request) ([]Timeline, error)
}
