package padwatch

import (
	"github.com/padwatch/go-padwatch/eia"
	"github.com/padwatch/go-padwatch/rolling"
)

// Options configures a dataset build: the rolling window size in weeks, the
// requested reporting period range, and how many labels may fetch at once.
type Options struct {
	WindowSize  int
	Range       eia.Range
	Concurrency int
}

// NewDefaultOptions returns a 4-week window over all weekly data since 2010
// with sequential fetching.
func NewDefaultOptions() *Options {
	return &Options{
		WindowSize:  rolling.DefaultWindow,
		Range:       eia.DefaultRange(),
		Concurrency: 1,
	}
}
