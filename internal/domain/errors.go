package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline failure classification. Components wrap
// these so callers can branch on the category without importing the
// component that produced them.
//
//	return fmt.Errorf("generate windows: %w", domain.ErrInvalidRange)
var (
	// ErrInvalidRange indicates the end date precedes the start date.
	ErrInvalidRange = errors.New("end date is before start date")

	// ErrMissingToken indicates no API token is available.
	ErrMissingToken = errors.New("no API token available")

	// ErrExpiredToken indicates the stored API token is past its expiry.
	ErrExpiredToken = errors.New("API token expired")

	// ErrDatasetNotFound indicates the requested dataset file does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrEmptyDataset indicates an hourly dataset with zero rows. The
	// aggregation step treats this as a no-op, not a failure.
	ErrEmptyDataset = errors.New("dataset has no rows")
)

// FetchError reports a failed metrics fetch for a single window. The
// pipeline absorbs these: the window is skipped and counted in the run
// summary rather than aborting the run.
type FetchError struct {
	Window TimeWindow
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch window %s: %v", e.Window.Local.Format("2006-01-02 15:04"), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
