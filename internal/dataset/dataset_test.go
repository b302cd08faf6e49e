package dataset

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"oikenops/flowmetrics/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func testRecord(hour int, flowID string, total float64) domain.FlowMetricRecord {
	return domain.FlowMetricRecord{
		Local:               time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC),
		CollectedAt:         time.Date(2024, 1, 2, 9, 30, 0, 123000000, time.UTC),
		FlowID:              flowID,
		FlowName:            "Flow " + flowID,
		FlowState:           "started",
		TotalExchanges:      total,
		SuccessfulExchanges: total - 1,
		AvgResponseTimeMs:   102.5,
	}
}

func TestAppendHourly_ReadBackInOrder(t *testing.T) {
	s := NewStore(t.TempDir())

	batch1 := []domain.FlowMetricRecord{testRecord(0, "F1", 10), testRecord(0, "F2", 4)}
	batch2 := []domain.FlowMetricRecord{testRecord(1, "F1", 20)}

	if err := s.AppendHourly("2024-01-02", batch1); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := s.AppendHourly("2024-01-02", batch2); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	got, err := s.ReadHourly("2024-01-02")
	if err != nil {
		t.Fatalf("ReadHourly failed: %v", err)
	}

	want := append(append([]domain.FlowMetricRecord{}, batch1...), batch2...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendHourly_HeaderWrittenOnce(t *testing.T) {
	s := NewStore(t.TempDir())

	for i := 0; i < 3; i++ {
		if err := s.AppendHourly("2024-01-02", []domain.FlowMetricRecord{testRecord(i, "F1", 1)}); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(s.HourlyPath("2024-01-02"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if n := strings.Count(string(data), "collection_timestamp"); n != 1 {
		t.Errorf("header appears %d times, want 1", n)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header + 3 rows, got %d lines", len(lines))
	}
}

func TestAppendHourly_EmptyBatchNoFile(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.AppendHourly("2024-01-02", nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := os.Stat(s.HourlyPath("2024-01-02")); !os.IsNotExist(err) {
		t.Error("expected no file for an empty batch")
	}
}

func TestReadHourly_NotFound(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.ReadHourly("2024-01-02")
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestAppendHourly_QuotedFields(t *testing.T) {
	s := NewStore(t.TempDir())

	rec := testRecord(0, "F1", 1)
	rec.FlowName = `meter, "prod" import`

	if err := s.AppendHourly("2024-01-02", []domain.FlowMetricRecord{rec}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	got, err := s.ReadHourly("2024-01-02")
	if err != nil {
		t.Fatalf("ReadHourly failed: %v", err)
	}
	if got[0].FlowName != rec.FlowName {
		t.Errorf("FlowName = %q, want %q", got[0].FlowName, rec.FlowName)
	}
}

func TestWriteDaily_Replaces(t *testing.T) {
	s := NewStore(t.TempDir())
	stamp := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	first := []domain.DailyAggregate{
		{Date: "2024-01-01", CollectedAt: stamp, FlowID: "F1", TotalExchanges: 30},
		{Date: "2024-01-01", CollectedAt: stamp, FlowID: "F2", TotalExchanges: 5},
	}
	if err := s.WriteDaily("2024-01-02", first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	second := []domain.DailyAggregate{
		{Date: "2024-01-01", CollectedAt: stamp, FlowID: "F1", TotalExchanges: 42},
	}
	if err := s.WriteDaily("2024-01-02", second); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := s.ReadDaily("2024-01-02")
	if err != nil {
		t.Fatalf("ReadDaily failed: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("daily rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestRunDate(t *testing.T) {
	s := NewStore(t.TempDir())

	for _, d := range []string{"2024-01-05", "2024-01-02", "2024-01-10"} {
		if err := s.AppendHourly(d, []domain.FlowMetricRecord{testRecord(0, "F1", 1)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := s.LatestRunDate()
	if err != nil {
		t.Fatalf("LatestRunDate failed: %v", err)
	}
	if got != "2024-01-10" {
		t.Errorf("LatestRunDate = %s, want 2024-01-10", got)
	}
}

func TestLatestRunDate_Empty(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.LatestRunDate()
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}
