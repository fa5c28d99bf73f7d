package timeseries

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"
)

var (
	ErrNoObservations   = errors.New("no valid observations after normalization")
	ErrUnparsablePeriod = errors.New("unparsable period")
)

const periodLayout = "2006-01-02"

// RawObservation is a single record as returned by the source, before any
// cleaning: an unparsed period string and a value that may be a JSON number,
// a numeric string, or null.
type RawObservation struct {
	Period string
	Value  any
}

// Series represents a normalized univariate time series storing a slice of
// time points and values of the same length. Timestamps are strictly
// ascending with no duplicates. A value of math.NaN() marks a period the
// source reported without a usable number.
type Series struct {
	T []time.Time
	V []float64
}

// Missing reports whether a value is the explicit missing marker.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// ParsePeriod parses a reporting period into a calendar date. Weekly periods
// arrive as dates (2006-01-02) with an RFC3339 fallback for sources that
// timestamp their periods.
func ParsePeriod(s string) (time.Time, error) {
	if t, err := time.Parse(periodLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrUnparsablePeriod)
}

// CoerceValue converts a decoded JSON value into a float64, mapping anything
// non-numeric to the missing marker rather than failing the record.
func CoerceValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Normalize converts raw fetched records into a canonical series: parsed
// timestamps, coerced values, ascending order, no duplicate periods. Records
// with an unparsable period are dropped with a warning instead of aborting
// the series. Duplicated periods keep the last-seen value so a re-fetch after
// a source correction lands on the corrected number.
func Normalize(raw []RawObservation) (*Series, error) {
	type obs struct {
		t time.Time
		v float64
	}
	parsed := make([]obs, 0, len(raw))
	for _, r := range raw {
		t, err := ParsePeriod(r.Period)
		if err != nil {
			slog.Warn("dropping observation", "period", r.Period, "error", err.Error())
			continue
		}
		parsed = append(parsed, obs{t: t, v: CoerceValue(r.Value)})
	}
	if len(parsed) == 0 {
		return nil, ErrNoObservations
	}

	// stable sort keeps input order within a duplicated period so keep-last
	// below sees the records in arrival order
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].t.Before(parsed[j].t)
	})

	s := &Series{
		T: make([]time.Time, 0, len(parsed)),
		V: make([]float64, 0, len(parsed)),
	}
	for i, o := range parsed {
		if i+1 < len(parsed) && parsed[i+1].t.Equal(o.t) {
			continue
		}
		s.T = append(s.T, o.t)
		s.V = append(s.V, o.v)
	}
	return s, nil
}

// Len returns the number of observations in the series.
func (s *Series) Len() int {
	return len(s.T)
}

func (s *Series) Copy() *Series {
	t := make([]time.Time, len(s.T))
	v := make([]float64, len(s.V))
	copy(t, s.T)
	copy(v, s.V)
	return &Series{T: t, V: v}
}

func (s *Series) StartTime() time.Time {
	var startTime time.Time
	if len(s.T) < 1 {
		return startTime
	}
	return s.T[0]
}

func (s *Series) EndTime() time.Time {
	var endTime time.Time
	if len(s.T) < 1 {
		return endTime
	}
	return s.T[len(s.T)-1]
}
