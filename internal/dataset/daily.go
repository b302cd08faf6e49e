package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"oikenops/flowmetrics/internal/domain"
)

// dailyHeader is the fixed daily dataset schema.
var dailyHeader = []string{
	"date",
	"collection_timestamp",
	"flow_id",
	"flow_name",
	"flow_state",
	"total_exchanges",
	"successful_exchanges",
	"failed_exchanges",
	"inflight_exchanges",
	"avg_response_time_ms",
	"avg_processing_time_ms",
}

// WriteDaily replaces the daily dataset for a run date with the given
// rows. The file is written to a temp path and renamed so readers never
// observe a half-written dataset.
func (s *Store) WriteDaily(runDate string, rows []domain.DailyAggregate) error {
	path := s.DailyPath(runDate)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("dataset: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(dailyHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("dataset: write header: %w", err)
	}
	for _, a := range rows {
		row := []string{
			a.Date,
			a.CollectedAt.Format(time.RFC3339Nano),
			a.FlowID,
			a.FlowName,
			a.FlowState,
			formatNumber(a.TotalExchanges),
			formatNumber(a.SuccessfulExchanges),
			formatNumber(a.FailedExchanges),
			formatNumber(a.InflightExchanges),
			formatNumber(a.AvgResponseTimeMs),
			formatNumber(a.AvgProcessingTimeMs),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("dataset: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dataset: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("dataset: replace %s: %w", path, err)
	}
	return nil
}

// ReadDaily returns the daily dataset rows for a run date. It fails with
// ErrDatasetNotFound when the file does not exist.
func (s *Store) ReadDaily(runDate string) ([]domain.DailyAggregate, error) {
	path := s.DailyPath(runDate)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("daily dataset %s: %w", path, domain.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	aggregates := make([]domain.DailyAggregate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		agg, err := parseDailyRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d: %w", path, i+2, err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, nil
}

func parseDailyRow(row []string) (domain.DailyAggregate, error) {
	var agg domain.DailyAggregate
	if len(row) != len(dailyHeader) {
		return agg, fmt.Errorf("expected %d columns, got %d", len(dailyHeader), len(row))
	}

	collectedAt, err := time.Parse(time.RFC3339Nano, row[1])
	if err != nil {
		return agg, fmt.Errorf("collection_timestamp: %w", err)
	}

	agg.Date = row[0]
	agg.CollectedAt = collectedAt
	agg.FlowID = row[2]
	agg.FlowName = row[3]
	agg.FlowState = row[4]

	for i, dst := range []*float64{
		&agg.TotalExchanges,
		&agg.SuccessfulExchanges,
		&agg.FailedExchanges,
		&agg.InflightExchanges,
		&agg.AvgResponseTimeMs,
		&agg.AvgProcessingTimeMs,
	} {
		v, err := strconv.ParseFloat(row[5+i], 64)
		if err != nil {
			return agg, fmt.Errorf("%s: %w", dailyHeader[5+i], err)
		}
		*dst = v
	}

	return agg, nil
}
