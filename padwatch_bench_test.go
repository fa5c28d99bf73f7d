package padwatch

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/profile"

	"github.com/padwatch/go-padwatch/timeseries"
)

var benchDataset *Dataset

func BenchmarkBuildDataset(b *testing.B) {
	// roughly 15 years of weekly reporting per region
	start := time.Date(2010, 1, 8, 0, 0, 0, 0, time.UTC)
	n := 15 * 52
	values := make([]float64, n)
	for i := range values {
		values[i] = 85.0 + float64(i%17) - float64(i%5)
	}

	labels := DefaultLabels()
	fetcher := &stubFetcher{
		responses: make(map[string][]timeseries.RawObservation, len(labels)),
	}
	for _, label := range labels {
		fetcher.responses[label.SeriesID] = weeklyRaw(start, values)
	}

	reg, err := NewRegistry(fetcher, nil)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		benchDataset, err = reg.BuildDataset(ctx, labels)
		if err != nil {
			panic(err)
		}
	}
}
