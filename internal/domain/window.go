package domain

import "time"

// TimeWindow is one hour of local wall-clock time, expressed also in UTC
// for the API boundary. ToUTC is always FromUTC plus one hour; windows
// produced for a run are contiguous and non-overlapping.
type TimeWindow struct {
	// FromUTC is the inclusive window start in UTC.
	FromUTC time.Time

	// ToUTC is the exclusive window end in UTC.
	ToUTC time.Time

	// Local is the local wall-clock timestamp of the window start.
	Local time.Time
}
