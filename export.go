package padwatch

import "time"

// LabelExport is one region's presentation-ready triple of aligned sequences
// plus its per-point timestamps.
type LabelExport struct {
	Label            string      `json:"label"`
	SeriesID         string      `json:"series_id"`
	T                []time.Time `json:"time"`
	Utilization      []float64   `json:"utilization"`
	MovingAverage    []float64   `json:"moving_average"`
	MovingVolatility []float64   `json:"moving_volatility"`
}

// FailureExport reports a label the build could not complete and why.
type FailureExport struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Export is the seam to rendering: built labels in configured order and the
// failures a consumer should surface alongside partial results.
type Export struct {
	Series   []LabelExport   `json:"series"`
	Failures []FailureExport `json:"failures"`
}

// Export projects the dataset into a presentation-ready structure. It copies
// every sequence so a consumer cannot alias the dataset's state, and performs
// no computation.
func (d *Dataset) Export() *Export {
	e := &Export{
		Series:   make([]LabelExport, 0, len(d.Labels)),
		Failures: make([]FailureExport, 0, len(d.Failures)),
	}
	for _, label := range d.Labels {
		ds := d.Series[label]
		le := LabelExport{
			Label:            ds.Label,
			SeriesID:         ds.SeriesID,
			T:                make([]time.Time, len(ds.Series.T)),
			Utilization:      make([]float64, len(ds.Series.V)),
			MovingAverage:    make([]float64, len(ds.MovingAverage)),
			MovingVolatility: make([]float64, len(ds.MovingVolatility)),
		}
		copy(le.T, ds.Series.T)
		copy(le.Utilization, ds.Series.V)
		copy(le.MovingAverage, ds.MovingAverage)
		copy(le.MovingVolatility, ds.MovingVolatility)
		e.Series = append(e.Series, le)
	}
	for _, f := range d.Failures {
		e.Failures = append(e.Failures, FailureExport{Label: f.Label, Reason: f.Err.Error()})
	}
	return e
}
