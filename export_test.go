package padwatch

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padwatch/go-padwatch/timeseries"
)

func buildTestDataset(t *testing.T) *Dataset {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		responses: map[string][]timeseries.RawObservation{
			"GOOD_1": weeklyRaw(start, []float64{80, 82, 79, 85, 83}),
			"GOOD_2": weeklyRaw(start, []float64{91, 90, 92, 89, 94}),
		},
		errs: map[string]error{
			"BAD": errStubFetch,
		},
	}
	reg, err := NewRegistry(fetcher, nil)
	require.NoError(t, err)

	d, err := reg.BuildDataset(context.Background(), []Label{
		{Name: "U.S. Total", SeriesID: "GOOD_1"},
		{Name: "PADD 1", SeriesID: "BAD"},
		{Name: "PADD 3", SeriesID: "GOOD_2"},
	})
	require.NoError(t, err)
	return d
}

func TestExportProjection(t *testing.T) {
	d := buildTestDataset(t)
	e := d.Export()

	require.Len(t, e.Series, 2)
	assert.Equal(t, "U.S. Total", e.Series[0].Label)
	assert.Equal(t, "GOOD_1", e.Series[0].SeriesID)
	assert.Equal(t, "PADD 3", e.Series[1].Label)

	for _, le := range e.Series {
		n := len(le.T)
		assert.Equal(t, n, len(le.Utilization))
		assert.Equal(t, n, len(le.MovingAverage))
		assert.Equal(t, n, len(le.MovingVolatility))
	}

	require.Len(t, e.Failures, 1)
	assert.Equal(t, "PADD 1", e.Failures[0].Label)
	assert.Contains(t, e.Failures[0].Reason, "stub fetch failure")
}

func TestExportCopiesSequences(t *testing.T) {
	d := buildTestDataset(t)
	e := d.Export()

	e.Series[0].Utilization[0] = -1.0
	e.Series[0].MovingAverage[4] = -1.0
	e.Series[0].T[0] = time.Time{}

	ds := d.Series["U.S. Total"]
	assert.Equal(t, 80.0, ds.Series.V[0])
	assert.False(t, ds.Series.T[0].IsZero())
	assert.InDelta(t, 82.25, ds.MovingAverage[4], 1e-9)
}

func TestExportLeadingEdgeUndefined(t *testing.T) {
	d := buildTestDataset(t)
	e := d.Export()

	le := e.Series[0]
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(le.MovingAverage[i]))
		assert.True(t, math.IsNaN(le.MovingVolatility[i]))
	}
	for i := 3; i < len(le.MovingAverage); i++ {
		assert.False(t, math.IsNaN(le.MovingAverage[i]))
		assert.False(t, math.IsNaN(le.MovingVolatility[i]))
	}
}

func TestExportEmptyDataset(t *testing.T) {
	d := &Dataset{Series: map[string]*DerivedSeries{}}
	e := d.Export()
	assert.Empty(t, e.Series)
	assert.Empty(t, e.Failures)
}
