// Package padwatch builds a weekly U.S. refinery-utilization dataset from
// EIA series: one normalized series per configured region plus 4-week moving
// average and moving volatility, with per-label failures recorded instead of
// aborting the whole build.
package padwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/padwatch/go-padwatch/eia"
	"github.com/padwatch/go-padwatch/rolling"
	"github.com/padwatch/go-padwatch/timeseries"
)

var ErrNoLabels = errors.New("no labels configured")

// Label pairs a human-readable region name with the EIA series identifier
// backing it.
type Label struct {
	Name     string `json:"name" yaml:"name"`
	SeriesID string `json:"series_id" yaml:"series_id"`
}

// DefaultLabels returns the standard six-region set in presentation order:
// national total first, then the five PADDs east to west.
func DefaultLabels() []Label {
	return []Label{
		{Name: "U.S. Total", SeriesID: "WPULEUS3"},
		{Name: "PADD 1", SeriesID: "W_NA_YUP_R10_PER"},
		{Name: "PADD 2", SeriesID: "W_NA_YUP_R20_PER"},
		{Name: "PADD 3", SeriesID: "W_NA_YUP_R30_PER"},
		{Name: "PADD 4", SeriesID: "W_NA_YUP_R40_PER"},
		{Name: "PADD 5", SeriesID: "W_NA_YUP_R50_PER"},
	}
}

// DerivedSeries is one region's normalized observations along with derived
// sequences aligned index-for-index with the observations. Positions without
// a full window of history hold NaN.
type DerivedSeries struct {
	Label    string
	SeriesID string

	Series           *timeseries.Series
	MovingAverage    []float64
	MovingVolatility []float64
}

// Failure records one label the build could not complete.
type Failure struct {
	Label string
	Err   error
}

// Dataset holds the per-label derived series of one build. Labels lists the
// successfully built label names in configured order; presentation relies on
// that order for side-by-side layout.
type Dataset struct {
	Labels   []string
	Series   map[string]*DerivedSeries
	Failures []Failure
}

// Registry orchestrates fetch, normalize, and derive for a configured label
// set against a single fetcher.
type Registry struct {
	fetcher eia.Fetcher
	opt     *Options
}

// NewRegistry returns a Registry using the provided fetcher and options. If
// no options are provided a default is used. Configuration problems surface
// here, before any fetch occurs.
func NewRegistry(fetcher eia.Fetcher, opt *Options) (*Registry, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if _, err := rolling.New(opt.WindowSize); err != nil {
		return nil, fmt.Errorf("invalid window size %d, %w", opt.WindowSize, err)
	}
	return &Registry{
		fetcher: fetcher,
		opt:     opt,
	}, nil
}

// BuildDataset fetches, normalizes, and derives every label in order. A
// label that fails to fetch or yields no usable observations is recorded in
// Failures and the remaining labels still build. The result's label order
// always matches the input order regardless of fetch completion order.
func (r *Registry) BuildDataset(ctx context.Context, labels []Label) (*Dataset, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	window, err := rolling.New(r.opt.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("invalid window size %d, %w", r.opt.WindowSize, err)
	}

	type slot struct {
		ds  *DerivedSeries
		err error
	}
	slots := make([]slot, len(labels))

	workers := r.opt.Concurrency
	if workers < 1 {
		workers = 1
	}

	// labels share no state; each goroutine writes its own slot exactly once
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, label := range labels {
		wg.Add(1)
		go func(i int, label Label) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slots[i].ds, slots[i].err = r.buildLabel(ctx, label, window)
		}(i, label)
	}
	wg.Wait()

	d := &Dataset{
		Series: make(map[string]*DerivedSeries, len(labels)),
	}
	for i, label := range labels {
		if slots[i].err != nil {
			slog.Warn("label failed",
				"label", label.Name,
				"series", label.SeriesID,
				"error", slots[i].err.Error(),
			)
			d.Failures = append(d.Failures, Failure{Label: label.Name, Err: slots[i].err})
			continue
		}
		d.Labels = append(d.Labels, label.Name)
		d.Series[label.Name] = slots[i].ds
	}
	return d, nil
}

func (r *Registry) buildLabel(ctx context.Context, label Label, window *rolling.Window) (*DerivedSeries, error) {
	raw, err := r.fetcher.FetchSeries(ctx, label.SeriesID, r.opt.Range)
	if err != nil {
		return nil, fmt.Errorf("fetching %s, %w", label.SeriesID, err)
	}
	series, err := timeseries.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s, %w", label.SeriesID, err)
	}
	ma, vol := window.Apply(series.V)
	return &DerivedSeries{
		Label:            label.Name,
		SeriesID:         label.SeriesID,
		Series:           series,
		MovingAverage:    ma,
		MovingVolatility: vol,
	}, nil
}
