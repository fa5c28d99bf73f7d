package padwatch

import (
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/padwatch/go-padwatch/refweek"
)

const (
	axisDateLayout = "2006-01-02"

	// DefaultComparisonYears bounds the cross-region comparison chart to the
	// recent past so six overlapping lines stay readable.
	DefaultComparisonYears = 3

	// DefaultHighlight is the region emphasized in the comparison chart; the
	// Gulf Coast holds roughly half of national refining capacity.
	DefaultHighlight = "PADD 3"
)

// chartValue maps the missing marker onto the echarts gap placeholder.
func chartValue(v float64) any {
	if math.IsNaN(v) {
		return "-"
	}
	return v
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		data = append(data, opts.LineData{Value: chartValue(v)})
	}
	return data
}

func formatAxis(t []time.Time) []string {
	x := make([]string, 0, len(t))
	for _, tp := range t {
		x = append(x, tp.Format(axisDateLayout))
	}
	return x
}

// LineRegion generates an echart line chart for one region plotting raw
// utilization, its moving average, and the volatility band around the raw
// series.
func LineRegion(ds *DerivedSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: ds.Label,
			},
		),
	)

	n := ds.Series.Len()
	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = ds.Series.V[i] + ds.MovingVolatility[i]
		lower[i] = ds.Series.V[i] - ds.MovingVolatility[i]
	}

	line.SetXAxis(formatAxis(ds.Series.T)).
		AddSeries("Utilization", lineData(ds.Series.V)).
		AddSeries("Moving Avg", lineData(ds.MovingAverage)).
		AddSeries("Upper", lineData(upper)).
		AddSeries("Lower", lineData(lower))
	return line
}

// LineComparison generates a single chart overlaying every built label's raw
// utilization since the cutoff, emphasizing one region. Labels keep their
// native timestamps; the shared axis is the union of all report weeks and
// absent weeks render as gaps. Report weeks containing a US holiday are
// marked on the highlighted series.
func LineComparison(d *Dataset, since time.Time, highlight string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "U.S. & PADD Refinery Utilization",
			},
		),
	)

	axis := comparisonAxis(d, since)
	line.SetXAxis(formatAxis(axis))

	for _, label := range d.Labels {
		ds := d.Series[label]
		byTime := make(map[time.Time]float64, ds.Series.Len())
		for i, tp := range ds.Series.T {
			byTime[tp] = ds.Series.V[i]
		}

		data := make([]opts.LineData, 0, len(axis))
		for _, tp := range axis {
			v, ok := byTime[tp]
			if !ok {
				data = append(data, opts.LineData{Value: "-"})
				continue
			}
			data = append(data, opts.LineData{Value: chartValue(v)})
		}

		if label == highlight {
			seriesOpts := []charts.SeriesOpts{
				charts.WithLineStyleOpts(opts.LineStyle{Width: 2.5}),
			}
			seriesOpts = append(seriesOpts, holidayMarks(axis)...)
			line.AddSeries(label, data, seriesOpts...)
			continue
		}
		line.AddSeries(label, data, charts.WithLineStyleOpts(opts.LineStyle{Width: 1.5}))
	}
	return line
}

func comparisonAxis(d *Dataset, since time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var axis []time.Time
	for _, label := range d.Labels {
		for _, tp := range d.Series[label].Series.T {
			if tp.Before(since) {
				continue
			}
			if _, ok := seen[tp]; ok {
				continue
			}
			seen[tp] = struct{}{}
			axis = append(axis, tp)
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}

func holidayMarks(axis []time.Time) []charts.SeriesOpts {
	weeks := refweek.HolidayWeeks(axis)
	var marks []charts.SeriesOpts
	for _, tp := range axis {
		name, ok := weeks[refweek.WeekEnding(tp)]
		if !ok {
			continue
		}
		marks = append(marks, charts.WithMarkLineNameXAxisItemOpts(
			opts.MarkLineNameXAxisItem{
				Name:  name,
				XAxis: tp.Format(axisDateLayout),
			},
		))
	}
	return marks
}

// BarVolatility generates a bar chart of each region's average moving
// volatility over the full series, a quick dispersion ranking across
// districts.
func BarVolatility(d *Dataset) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Avg Volatility by Region",
			},
		),
	)

	data := make([]opts.BarData, 0, len(d.Labels))
	for _, label := range d.Labels {
		data = append(data, opts.BarData{Value: chartValue(meanDefined(d.Series[label].MovingVolatility))})
	}
	bar.SetXAxis(d.Labels).AddSeries("Avg Volatility", data)
	return bar
}

func meanDefined(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Dashboard uses the Apache Echarts library to generate an html file with a
// trend chart per region, the cross-region comparison, and the volatility
// ranking.
func Dashboard(d *Dataset, path string) error {
	page := components.NewPage()
	for _, label := range d.Labels {
		page.AddCharts(LineRegion(d.Series[label]))
	}
	page.AddCharts(
		LineComparison(d, comparisonCutoff(d), DefaultHighlight),
		BarVolatility(d),
	)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}

func comparisonCutoff(d *Dataset) time.Time {
	var last time.Time
	for _, label := range d.Labels {
		if end := d.Series[label].Series.EndTime(); end.After(last) {
			last = end
		}
	}
	if last.IsZero() {
		return last
	}
	return last.AddDate(-DefaultComparisonYears, 0, 0)
}
