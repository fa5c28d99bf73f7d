// Package rolling computes fixed-window moving statistics over a normalized
// series, leaving positions without a full window of real values undefined.
package rolling

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrWindowTooSmall = errors.New("window size must be at least 2")

const DefaultWindow = 4

// Window computes a moving average and moving sample standard deviation over
// a fixed number of trailing observations.
type Window struct {
	size int
}

// New returns a Window of the requested size. Sizes below 2 cannot produce a
// sample standard deviation and are rejected before any data is touched.
func New(size int) (*Window, error) {
	if size < 2 {
		return nil, ErrWindowTooSmall
	}
	return &Window{size: size}, nil
}

func (w *Window) Size() int {
	return w.size
}

// Apply returns the moving average and moving sample standard deviation of
// values, each the same length as the input. The first size-1 positions are
// NaN since there is insufficient history, and any window containing a
// missing value yields NaN at that position rather than a silently skewed
// statistic. Apply is a pure function of its inputs.
func (w *Window) Apply(values []float64) (mean, stddev []float64) {
	mean = make([]float64, len(values))
	stddev = make([]float64, len(values))
	for i := range values {
		if i < w.size-1 {
			mean[i] = math.NaN()
			stddev[i] = math.NaN()
			continue
		}
		window := values[i-w.size+1 : i+1]
		if hasMissing(window) {
			mean[i] = math.NaN()
			stddev[i] = math.NaN()
			continue
		}
		mean[i], stddev[i] = stat.MeanStdDev(window, nil)
	}
	return mean, stddev
}

func hasMissing(window []float64) bool {
	for _, v := range window {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
