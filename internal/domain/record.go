package domain

import "time"

// FlowMetricRecord is one flattened row: the metrics of one flow during
// one TimeWindow. Total, Successful and Failed are independently
// reported counters; the source API does not guarantee
// Total >= Successful + Failed, and consumers must not assume it.
type FlowMetricRecord struct {
	// Local is the local wall-clock timestamp of the window.
	Local time.Time

	// CollectedAt is when the record was collected (wall clock).
	CollectedAt time.Time

	FlowID    string
	FlowName  string
	FlowState string

	TotalExchanges      float64
	SuccessfulExchanges float64
	FailedExchanges     float64
	InflightExchanges   float64
	AvgResponseTimeMs   float64
	AvgProcessingTimeMs float64
}

// Date returns the record's calendar date in YYYY-MM-DD form.
func (r FlowMetricRecord) Date() string { return r.Local.Format("2006-01-02") }

// Hour returns the record's local hour of day.
func (r FlowMetricRecord) Hour() int { return r.Local.Hour() }

// DailyAggregate is one per-(date, flow) rollup row, fully recomputed
// from the hourly dataset on every aggregation pass. Exchange counters
// are sums over hourly rows; inflight and the latency fields are
// arithmetic means of the hourly values (mean of hourly means, not
// re-derived from raw per-exchange data).
type DailyAggregate struct {
	Date        string
	CollectedAt time.Time

	FlowID    string
	FlowName  string
	FlowState string

	TotalExchanges      float64
	SuccessfulExchanges float64
	FailedExchanges     float64
	InflightExchanges   float64
	AvgResponseTimeMs   float64
	AvgProcessingTimeMs float64
}
