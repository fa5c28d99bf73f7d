// Package refweek provides helpers for the EIA weekly reporting calendar.
// Report weeks run Saturday through Friday and are identified by their
// ending Friday.
package refweek

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// WeekEnding returns the Friday ending the report week containing t.
func WeekEnding(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, days)
}

func newCalendar() *cal.Calendar {
	c := &cal.Calendar{Name: "EIA reporting"}
	c.AddHoliday(us.Holidays...)
	return c
}

// HolidayWeeks maps each report week present in ts to the name of a US
// federal holiday falling inside that week, if any. Analysts use this to
// annotate weeks where utilization swings track holiday demand rather than
// refinery behavior.
func HolidayWeeks(ts []time.Time) map[time.Time]string {
	c := newCalendar()
	out := make(map[time.Time]string)
	for _, t := range ts {
		end := WeekEnding(t)
		if _, seen := out[end]; seen {
			continue
		}
		for d := end.AddDate(0, 0, -6); !d.After(end); d = d.AddDate(0, 0, 1) {
			actual, observed, h := c.IsHoliday(d)
			if (actual || observed) && h != nil {
				out[end] = h.Name
				break
			}
		}
	}
	return out
}
