// Package dataset persists flattened flow metrics as CSV datasets.
//
// Datasets are keyed by the calendar day the run executed, not the day
// the data describes: each run appends into data/{runDate}_flow_metrics_hourly.csv
// and rewrites data/{runDate}_flow_metrics_daily.csv. Re-running the
// collector over an overlapping date range on the same day therefore
// appends a second copy of those hours; the store never deduplicates.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"oikenops/flowmetrics/internal/domain"
)

const (
	hourlySuffix = "_flow_metrics_hourly.csv"
	dailySuffix  = "_flow_metrics_daily.csv"

	// DefaultDir is the default output directory for dataset files.
	DefaultDir = "data"
)

// Store reads and writes the hourly and daily dataset files under a
// single data directory. A Store is not safe for concurrent runs
// against the same run date; the caller must serialize writers.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{dir: dir}
}

// Dir returns the store's data directory.
func (s *Store) Dir() string { return s.dir }

// HourlyPath returns the hourly dataset path for a run date (YYYY-MM-DD).
func (s *Store) HourlyPath(runDate string) string {
	return filepath.Join(s.dir, runDate+hourlySuffix)
}

// DailyPath returns the daily dataset path for a run date (YYYY-MM-DD).
func (s *Store) DailyPath(runDate string) string {
	return filepath.Join(s.dir, runDate+dailySuffix)
}

// LatestRunDate returns the run date of the most recent hourly dataset
// in the store, or ErrDatasetNotFound if the directory holds none.
// Date-prefixed file names sort chronologically, so the lexicographic
// maximum is the latest run.
func (s *Store) LatestRunDate() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no datasets in %s: %w", s.dir, domain.ErrDatasetNotFound)
		}
		return "", fmt.Errorf("read data directory %s: %w", s.dir, err)
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, hourlySuffix) {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, hourlySuffix))
	}
	if len(dates) == 0 {
		return "", fmt.Errorf("no datasets in %s: %w", s.dir, domain.ErrDatasetNotFound)
	}

	sort.Strings(dates)
	return dates[len(dates)-1], nil
}
