package trends

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
)

const (
	// DefaultServer is the endpoint requests are made against.
	DefaultServer = "https://www.googleapis.com"
	// DefaultVersion is the API version requests are made against.
	DefaultVersion = "v1beta"
)

// RESTClient calls the Trends Health API over HTTP.
type RESTClient struct {
	http    *resty.Client
	apiKey  string
	version string
	log     zerolog.Logger
}

// NewRESTClient creates a client for the given API key.
func NewRESTClient(apiKey string) (*RESTClient, error) {
	if apiKey == "" {
		return nil, &model.ConfigError{Field: "api_key", Reason: "an API key is required"}
	}
	return &RESTClient{
		http:    resty.New().SetBaseURL(DefaultServer),
		apiKey:  apiKey,
		version: DefaultVersion,
		log:     zerolog.Nop(),
	}, nil
}

// WithServer overrides the endpoint, e.g. for a test server.
func (c *RESTClient) WithServer(server string) *RESTClient {
	c.http.SetBaseURL(server)
	return c
}

// WithVersion overrides the API version.
func (c *RESTClient) WithVersion(version string) *RESTClient {
	c.version = version
	return c
}

// WithLogger sets the client's logger.
func (c *RESTClient) WithLogger(log zerolog.Logger) *RESTClient {
	c.log = log
	return c
}

// timelineResponse mirrors the getTimelinesForHealth response body.
type timelineResponse struct {
	Lines []struct {
		Term   string `json:"term"`
		Points []struct {
			Date  string  `json:"date"`
			Value float64 `json:"value"`
		} `json:"points"`
	} `json:"lines"`
}

// Timelines executes one timelinesForHealth call. Configuration problems
// surface before the request is made; everything after that (transport
// failures, non-2xx responses, malformed bodies) is returned as a plain
// error for the retry layer to absorb.
func (c *RESTClient) Timelines(ctx context.Context, req Request) ([]Timeline, error) {
	params, err := buildQuery(req)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("start", dates.FormatISO(req.StartDate)).
		Str("end", dates.FormatISO(req.EndDate)).
		Msg("running period")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetQueryParam("key", c.apiKey).
		Get(fmt.Sprintf("/trends/%s/timelinesForHealth", c.version))
	if err != nil {
		return nil, fmt.Errorf("timelines request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("timelines request returned %s: %s", resp.Status(), resp.String())
	}

	var body timelineResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decoding timelines response: %w", err)
	}

	lines := make([]Timeline, 0, len(body.Lines))
	for _, line := range body.Lines {
		points := make([]model.SeriesPoint, 0, len(line.Points))
		for _, p := range line.Points {
			period, err := dates.ParsePoint(p.Date)
			if err != nil {
				return nil, fmt.Errorf("term %q: %w", line.Term, err)
			}
			points = append(points, model.SeriesPoint{Date: p.Date, Period: period, Value: p.Value})
		}
		lines = append(lines, Timeline{Term: line.Term, Points: points})
	}
	return lines, nil
}
