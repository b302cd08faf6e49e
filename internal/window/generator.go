// Package window generates the ordered sequence of hourly fetch windows
// for a date range.
package window

import (
	"fmt"
	"time"

	"oikenops/flowmetrics/internal/domain"
)

// Generate returns one TimeWindow per hour from local midnight of start
// through local 23:00 of end inclusive. The UTC bounds are derived from
// the local timestamp by subtracting offsetHours.
//
// The offset is a static configuration value, not computed from the
// calendar date, so daylight-saving transitions are not handled. Runs
// spanning a DST change must adjust the offset manually.
func Generate(start, end time.Time, offsetHours int) ([]domain.TimeWindow, error) {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	if endDay.Before(startDay) {
		return nil, fmt.Errorf("window range %s to %s: %w",
			startDay.Format("2006-01-02"), endDay.Format("2006-01-02"), domain.ErrInvalidRange)
	}

	offset := time.Duration(offsetHours) * time.Hour
	last := endDay.Add(23 * time.Hour)

	var windows []domain.TimeWindow
	for local := startDay; !local.After(last); local = local.Add(time.Hour) {
		from := local.Add(-offset)
		windows = append(windows, domain.TimeWindow{
			FromUTC: from,
			ToUTC:   from.Add(time.Hour),
			Local:   local,
		})
	}

	return windows, nil
}

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
