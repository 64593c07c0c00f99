package dashboard

import (
	"fmt"
	"time"

	"github.com/jrsteele09/solar-dashboard/api"
)

// Period is the span of time a dashboard view covers.
type Period string

const (
	Day   Period = "day"
	Month Period = "month"
	Year  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Day, Month, Year:
		return p, nil
	case "":
		return Day, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Range returns the calendar span [start, end) of the period containing date, in date's location.
func Range(date time.Time, p Period) (time.Time, time.Time) {
	y, m, d := date.Date()
	loc := date.Location()
	switch p {
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1)
	}
}

// aggregation reports how samples are bucketed for a period. A day shows raw samples.
func (p Period) aggregation() (api.Granularity, bool) {
	switch p {
	case Month:
		return api.ByDay, true
	case Year:
		return api.ByMonth, true
	}
	return "", false
}
