// Package runlog keeps a durable history of collection runs, so partial
// data loss (windows that failed to fetch) can be spotted later without
// re-reading the dataset files.
package runlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeError   = "error"
)

// RunRecord is one persisted collection run.
type RunRecord struct {
	// ID is the auto-increment primary key (assigned on insert).
	ID int64

	// StartedAt and FinishedAt bracket the run's execution.
	StartedAt  time.Time
	FinishedAt time.Time

	// StartDate and EndDate are the collected range (YYYY-MM-DD, local).
	StartDate string
	EndDate   string

	WindowsTotal     int
	WindowsSucceeded int
	RecordsWritten   int

	// HourlyPath and DailyPath are the dataset files the run produced.
	HourlyPath string
	DailyPath  string

	// Outcome is "success", "partial" (some windows failed), or "error".
	Outcome string

	// Detail holds a human-readable explanation when Outcome is "error".
	Detail string
}
