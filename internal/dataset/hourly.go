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

// hourlyHeader is the fixed hourly dataset schema. It is written exactly
// once, when the file is first created.
var hourlyHeader = []string{
	"datetime",
	"date",
	"hour",
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

const (
	localTimeLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// AppendHourly appends a batch of records to the hourly dataset for the
// given run date, creating the file (and the data directory) with a
// header on first use. Rows are flushed and synced before returning, so
// a crash between two Append calls leaves all previously appended rows
// intact. Records are never deduplicated.
func (s *Store) AppendHourly(runDate string, records []domain.FlowMetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	path := s.HourlyPath(runDate)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("dataset: stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(hourlyHeader); err != nil {
			return fmt.Errorf("dataset: write header: %w", err)
		}
	}

	for _, r := range records {
		row := []string{
			r.Local.Format(localTimeLayout),
			r.Date(),
			strconv.Itoa(r.Hour()),
			r.CollectedAt.Format(time.RFC3339Nano),
			r.FlowID,
			r.FlowName,
			r.FlowState,
			formatNumber(r.TotalExchanges),
			formatNumber(r.SuccessfulExchanges),
			formatNumber(r.FailedExchanges),
			formatNumber(r.InflightExchanges),
			formatNumber(r.AvgResponseTimeMs),
			formatNumber(r.AvgProcessingTimeMs),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("dataset: flush %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("dataset: sync %s: %w", path, err)
	}
	return nil
}

// ReadHourly returns the full ordered row sequence of the hourly dataset
// for a run date. It fails with ErrDatasetNotFound when the file does
// not exist.
func (s *Store) ReadHourly(runDate string) ([]domain.FlowMetricRecord, error) {
	path := s.HourlyPath(runDate)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("hourly dataset %s: %w", path, domain.ErrDatasetNotFound)
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

	// First row is the header.
	records := make([]domain.FlowMetricRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseHourlyRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseHourlyRow(row []string) (domain.FlowMetricRecord, error) {
	var rec domain.FlowMetricRecord
	if len(row) != len(hourlyHeader) {
		return rec, fmt.Errorf("expected %d columns, got %d", len(hourlyHeader), len(row))
	}

	local, err := time.Parse(localTimeLayout, row[0])
	if err != nil {
		return rec, fmt.Errorf("datetime: %w", err)
	}
	collectedAt, err := time.Parse(time.RFC3339Nano, row[3])
	if err != nil {
		return rec, fmt.Errorf("collection_timestamp: %w", err)
	}

	rec.Local = local
	rec.CollectedAt = collectedAt
	rec.FlowID = row[4]
	rec.FlowName = row[5]
	rec.FlowState = row[6]

	for i, dst := range []*float64{
		&rec.TotalExchanges,
		&rec.SuccessfulExchanges,
		&rec.FailedExchanges,
		&rec.InflightExchanges,
		&rec.AvgResponseTimeMs,
		&rec.AvgProcessingTimeMs,
	} {
		v, err := strconv.ParseFloat(row[7+i], 64)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", hourlyHeader[7+i], err)
		}
		*dst = v
	}

	return rec, nil
}

// formatNumber renders a metric value without a trailing fraction when
// it is integral, matching how counters arrive from the API.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
