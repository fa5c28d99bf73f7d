// Package eia fetches weekly series from the EIA v2 open data API, treating
// the remote source as an opaque paged provider of (period, value) records.
package eia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/padwatch/go-padwatch/timeseries"
)

var (
	ErrMissingAPIKey     = errors.New("missing EIA API key")
	ErrMalformedResponse = errors.New("malformed EIA response")
	ErrRemote            = errors.New("EIA API returned an error")
)

const (
	// DefaultBaseURL points at the weekly refinery utilization route.
	DefaultBaseURL = "https://api.eia.gov/v2/petroleum/pnp/wiup/data/"

	DefaultPageSize = 5000
	DefaultTimeout  = 30 * time.Second

	periodLayout = "2006-01-02"
)

// Fetcher retrieves raw observations for one series identifier. The registry
// depends on this seam rather than on a concrete client.
type Fetcher interface {
	FetchSeries(ctx context.Context, seriesID string, rng Range) ([]timeseries.RawObservation, error)
}

// Range bounds the requested reporting periods. A zero Start or End leaves
// that side unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// DefaultRange covers all available weekly data since 2010.
func DefaultRange() Range {
	return Range{Start: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Client is a paged EIA v2 API client. The zero value is not usable; create
// one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int

	apiKey  string
	limiter *rate.Limiter
}

// NewClient returns a Client authenticated with the provided API key. The
// limiter keeps paged fetches under the API's published request ceiling.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		PageSize:   DefaultPageSize,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

type apiResponse struct {
	Response *apiData `json:"response"`
	Error    string   `json:"error"`
}

type apiData struct {
	// the API reports total as a JSON string on some routes
	Total any      `json:"total"`
	Data  []apiRow `json:"data"`
}

type apiRow struct {
	Period string `json:"period"`
	Value  any    `json:"value"`
}

// FetchSeries retrieves every record for seriesID within rng, following the
// API's offset/length pagination until the reported total is exhausted. The
// remote returns newest-first; ordering is left to normalization. A single
// failed page fails the whole series fetch.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, rng Range) ([]timeseries.RawObservation, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var out []timeseries.RawObservation
	offset := 0
	for {
		page, total, err := c.fetchPage(ctx, seriesID, rng, offset)
		if err != nil {
			return nil, fmt.Errorf("series %s offset %d, %w", seriesID, offset, err)
		}
		for _, row := range page {
			out = append(out, timeseries.RawObservation{Period: row.Period, Value: row.Value})
		}

		offset += len(page)
		if len(page) == 0 || len(page) < c.PageSize || offset >= total {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, seriesID string, rng Range, offset int) ([]apiRow, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(seriesID, rng, offset), nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("status %d, %w", resp.StatusCode, ErrRemote)
	}

	var r apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("decoding response, %w", err)
	}
	if r.Error != "" {
		return nil, 0, fmt.Errorf("%s, %w", r.Error, ErrRemote)
	}
	if r.Response == nil {
		return nil, 0, ErrMalformedResponse
	}

	total := totalCount(r.Response.Total)
	if total < 0 {
		total = offset + len(r.Response.Data)
	}
	return r.Response.Data, total, nil
}

func totalCount(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return -1
		}
		return n
	default:
		return -1
	}
}

func (c *Client) pageURL(seriesID string, rng Range, offset int) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("frequency", "weekly")
	q.Set("data[0]", "value")
	q.Set("facets[series][]", seriesID)
	q.Set("sort[0][column]", "period")
	q.Set("sort[0][direction]", "desc")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(c.PageSize))
	if !rng.Start.IsZero() {
		q.Set("start", rng.Start.Format(periodLayout))
	}
	if !rng.End.IsZero() {
		q.Set("end", rng.End.Format(periodLayout))
	}
	return c.BaseURL + "?" + q.Encode()
}
