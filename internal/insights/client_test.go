package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/retry"

	"github.com/google/go-cmp/cmp"
)

func testWindow() domain.TimeWindow {
	local := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	return domain.TimeWindow{
		FromUTC: local.Add(-time.Hour),
		ToUTC:   local,
		Local:   local,
	}
}

func entryJSON(flowID string, metrics map[string]float64) map[string]any {
	ms := make([]any, 0, len(metrics))
	for id, v := range metrics {
		ms = append(ms, map[string]any{"metricId": id, "value": v})
	}
	return map[string]any{
		"flowDetails": map[string]any{
			"flowId":    flowID,
			"flowName":  "Flow " + flowID,
			"flowState": "started",
		},
		"metrics": ms,
	}
}

func TestFetchWindow_QueryParameters(t *testing.T) {
	var gotFrom, gotTo, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("fromDatetimeInclusive")
		gotTo = r.URL.Query().Get("toDatetimeExclusive")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-token")
	if _, err := c.FetchWindow(context.Background(), testWindow()); err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}

	if gotFrom != "2024-01-01T04:00:00.000Z" {
		t.Errorf("fromDatetimeInclusive = %q", gotFrom)
	}
	if gotTo != "2024-01-01T05:00:00.000Z" {
		t.Errorf("toDatetimeExclusive = %q", gotTo)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestFetchWindow_ArrayPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{
			entryJSON("F1", map[string]float64{"total-exchanges": 10}),
			entryJSON("F2", map[string]float64{"total-exchanges": 3}),
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	entries, err := c.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}

	want := []FlowEntry{
		{
			FlowDetails: FlowDetails{FlowID: "F1", FlowName: "Flow F1", FlowState: "started"},
			Metrics:     []MetricValue{{MetricID: "total-exchanges", Value: 10}},
		},
		{
			FlowDetails: FlowDetails{FlowID: "F2", FlowName: "Flow F2", FlowState: "started"},
			Metrics:     []MetricValue{{MetricID: "total-exchanges", Value: 3}},
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchWindow_SingleObjectPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entryJSON("F1", map[string]float64{"successful-exchanges": 7}))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	entries, err := c.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}
	if len(entries) != 1 || entries[0].FlowDetails.FlowID != "F1" {
		t.Fatalf("expected single F1 entry, got %+v", entries)
	}
}

func TestFetchWindow_NullPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	entries, err := c.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestFetchWindow_SkipsNonObjectElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[42, "junk", {"flowDetails":{"flowId":"F1"},"metrics":[]}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	entries, err := c.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}
	if len(entries) != 1 || entries[0].FlowDetails.FlowID != "F1" {
		t.Fatalf("expected the single object entry, got %+v", entries)
	}
}

func TestFetchWindow_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	_, err := c.FetchWindow(context.Background(), testWindow())

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *domain.FetchError, got %v", err)
	}
	if !fetchErr.Window.Local.Equal(testWindow().Local) {
		t.Errorf("FetchError window = %v", fetchErr.Window.Local)
	}
}

func TestFetchWindow_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	_, err := c.FetchWindow(context.Background(), testWindow())

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *domain.FetchError, got %v", err)
	}
}

func TestFetchWindow_RetryOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]any{})
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok")
	c.Retry = retry.Config{MaxAttempts: 3}

	if _, err := c.FetchWindow(context.Background(), testWindow()); err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
