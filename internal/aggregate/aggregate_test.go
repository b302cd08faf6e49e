package aggregate

import (
	"errors"
	"os"
	"testing"
	"time"

	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"

	"github.com/google/go-cmp/cmp"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
}

func record(day, hour int, flowID string, total, avgResponse float64) domain.FlowMetricRecord {
	return domain.FlowMetricRecord{
		Local:             time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC),
		CollectedAt:       fixedClock(),
		FlowID:            flowID,
		FlowName:          "Flow " + flowID,
		FlowState:         "started",
		TotalExchanges:    total,
		AvgResponseTimeMs: avgResponse,
	}
}

func newAggregator(t *testing.T) (*Aggregator, *dataset.Store) {
	t.Helper()
	store := dataset.NewStore(t.TempDir())
	agg := New(store)
	agg.SetClock(fixedClock)
	return agg, store
}

func TestRun_SumsAndMeans(t *testing.T) {
	agg, store := newAggregator(t)

	records := []domain.FlowMetricRecord{
		record(1, 0, "F1", 10, 100),
		record(1, 1, "F1", 20, 200),
	}
	if err := store.AppendHourly("2024-01-02", records); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := agg.Run("2024-01-02")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []domain.DailyAggregate{{
		Date:              "2024-01-01",
		CollectedAt:       fixedClock(),
		FlowID:            "F1",
		FlowName:          "Flow F1",
		FlowState:         "started",
		TotalExchanges:    30,
		AvgResponseTimeMs: 150,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rollup mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_GroupsByDateAndFlow(t *testing.T) {
	agg, store := newAggregator(t)

	records := []domain.FlowMetricRecord{
		record(1, 5, "F1", 10, 0),
		record(1, 6, "F2", 3, 0),
		record(2, 5, "F1", 7, 0),
	}
	if err := store.AppendHourly("2024-01-03", records); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := agg.Run("2024-01-03")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	// Sorted by date then flow id.
	if got[0].Date != "2024-01-01" || got[0].FlowID != "F1" {
		t.Errorf("group 0 = (%s, %s)", got[0].Date, got[0].FlowID)
	}
	if got[1].Date != "2024-01-01" || got[1].FlowID != "F2" {
		t.Errorf("group 1 = (%s, %s)", got[1].Date, got[1].FlowID)
	}
	if got[2].Date != "2024-01-02" || got[2].FlowID != "F1" {
		t.Errorf("group 2 = (%s, %s)", got[2].Date, got[2].FlowID)
	}
}

func TestRun_IdempotentOnReplace(t *testing.T) {
	agg, store := newAggregator(t)

	records := []domain.FlowMetricRecord{
		record(1, 0, "F1", 10, 100),
		record(1, 1, "F2", 20, 50),
	}
	if err := store.AppendHourly("2024-01-02", records); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if _, err := agg.Run("2024-01-02"); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	first, err := os.ReadFile(store.DailyPath("2024-01-02"))
	if err != nil {
		t.Fatalf("read daily file: %v", err)
	}

	if _, err := agg.Run("2024-01-02"); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	second, err := os.ReadFile(store.DailyPath("2024-01-02"))
	if err != nil {
		t.Fatalf("read daily file: %v", err)
	}

	if string(first) != string(second) {
		t.Error("expected byte-identical daily output on unchanged hourly data")
	}
}

func TestRun_CountersSummedIndependently(t *testing.T) {
	agg, store := newAggregator(t)

	// total < successful + failed: the counters are independently
	// reported and must be rolled up without consistency assumptions.
	r1 := record(1, 0, "F1", 5, 0)
	r1.SuccessfulExchanges = 4
	r1.FailedExchanges = 3
	if err := store.AppendHourly("2024-01-02", []domain.FlowMetricRecord{r1}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := agg.Run("2024-01-02")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got[0].TotalExchanges != 5 || got[0].SuccessfulExchanges != 4 || got[0].FailedExchanges != 3 {
		t.Errorf("counters = (%v, %v, %v), want (5, 4, 3)",
			got[0].TotalExchanges, got[0].SuccessfulExchanges, got[0].FailedExchanges)
	}
}

func TestRun_MissingDataset(t *testing.T) {
	agg, _ := newAggregator(t)

	_, err := agg.Run("2024-01-02")
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestRun_EmptyDatasetNoDailyFile(t *testing.T) {
	agg, store := newAggregator(t)

	// A dataset file with a header but no rows.
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	header := "datetime,date,hour,collection_timestamp,flow_id,flow_name,flow_state," +
		"total_exchanges,successful_exchanges,failed_exchanges,inflight_exchanges," +
		"avg_response_time_ms,avg_processing_time_ms\n"
	if err := os.WriteFile(store.HourlyPath("2024-01-02"), []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := agg.Run("2024-01-02")
	if !errors.Is(err, domain.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	if _, statErr := os.Stat(store.DailyPath("2024-01-02")); !os.IsNotExist(statErr) {
		t.Error("expected no daily dataset for an empty hourly dataset")
	}
}
