package flatten

import (
	"testing"
	"time"

	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/insights"

	"github.com/google/go-cmp/cmp"
)

var collectedAt = time.Date(2024, 1, 1, 6, 0, 3, 0, time.UTC)

func window(local time.Time) domain.TimeWindow {
	return domain.TimeWindow{
		FromUTC: local.Add(-time.Hour),
		ToUTC:   local,
		Local:   local,
	}
}

func TestRecords_MapsMetricIDs(t *testing.T) {
	local := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	entries := []insights.FlowEntry{{
		FlowDetails: insights.FlowDetails{FlowID: "F1", FlowState: "started"},
		Metrics: []insights.MetricValue{
			{MetricID: "total-exchanges", Value: 10},
			{MetricID: "successful-exchanges", Value: 7},
		},
	}}

	got := Records(window(local), entries, collectedAt)

	want := []domain.FlowMetricRecord{{
		Local:               local,
		CollectedAt:         collectedAt,
		FlowID:              "F1",
		FlowState:           "started",
		TotalExchanges:      10,
		SuccessfulExchanges: 7,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	if got[0].Hour() != 5 {
		t.Errorf("Hour() = %d, want 5", got[0].Hour())
	}
	if got[0].Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", got[0].Date())
	}
}

func TestRecords_EmptyEntries(t *testing.T) {
	local := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := Records(window(local), nil, collectedAt); len(got) != 0 {
		t.Errorf("expected no records for nil entries, got %d", len(got))
	}
	if got := Records(window(local), []insights.FlowEntry{}, collectedAt); len(got) != 0 {
		t.Errorf("expected no records for empty entries, got %d", len(got))
	}
}

func TestRecords_DefaultsMissingFields(t *testing.T) {
	local := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []insights.FlowEntry{{}}

	got := Records(window(local), entries, collectedAt)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	r := got[0]
	if r.FlowID != "unknown" {
		t.Errorf("FlowID = %q, want \"unknown\"", r.FlowID)
	}
	if r.FlowName != "" || r.FlowState != "" {
		t.Errorf("expected empty name/state, got %q/%q", r.FlowName, r.FlowState)
	}
	for name, v := range map[string]float64{
		"TotalExchanges":      r.TotalExchanges,
		"SuccessfulExchanges": r.SuccessfulExchanges,
		"FailedExchanges":     r.FailedExchanges,
		"InflightExchanges":   r.InflightExchanges,
		"AvgResponseTimeMs":   r.AvgResponseTimeMs,
		"AvgProcessingTimeMs": r.AvgProcessingTimeMs,
	} {
		if v != 0 {
			t.Errorf("%s = %v, want 0", name, v)
		}
	}
}

func TestRecords_LastValueWinsOnDuplicateMetric(t *testing.T) {
	local := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	entries := []insights.FlowEntry{{
		FlowDetails: insights.FlowDetails{FlowID: "F1"},
		Metrics: []insights.MetricValue{
			{MetricID: "total-exchanges", Value: 5},
			{MetricID: "total-exchanges", Value: 9},
		},
	}}

	got := Records(window(local), entries, collectedAt)
	if got[0].TotalExchanges != 9 {
		t.Errorf("TotalExchanges = %v, want 9 (last value wins)", got[0].TotalExchanges)
	}
}

func TestRecords_UnknownMetricIgnored(t *testing.T) {
	local := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	entries := []insights.FlowEntry{{
		FlowDetails: insights.FlowDetails{FlowID: "F1"},
		Metrics: []insights.MetricValue{
			{MetricID: "some-future-metric", Value: 123},
			{MetricID: "failed-exchanges", Value: 2},
		},
	}}

	got := Records(window(local), entries, collectedAt)
	if got[0].FailedExchanges != 2 {
		t.Errorf("FailedExchanges = %v, want 2", got[0].FailedExchanges)
	}
	if got[0].TotalExchanges != 0 {
		t.Errorf("TotalExchanges = %v, want 0", got[0].TotalExchanges)
	}
}
