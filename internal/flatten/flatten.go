// Package flatten normalizes raw flow entries into tabular metric
// records, applying the fixed metric-id mapping and zero defaults.
package flatten

import (
	"time"

	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/insights"
)

// Metric ids reported by the insights API.
const (
	metricTotalExchanges      = "total-exchanges"
	metricSuccessfulExchanges = "successful-exchanges"
	metricFailedExchanges     = "failed-exchanges"
	metricInflightExchanges   = "inflight-exchanges"
	metricAvgResponseMillis   = "avg-response-time-millis"
	metricAvgProcessingMillis = "avg-processing-time-millis"
)

// unknownFlowID is the sentinel used when an entry carries no flow id.
const unknownFlowID = "unknown"

// Records flattens the entries fetched for one window into one
// FlowMetricRecord per entry. Metric ids absent from an entry default to
// zero; on a duplicated metric id the last value wins. An empty entry
// list yields an empty record list.
func Records(w domain.TimeWindow, entries []insights.FlowEntry, collectedAt time.Time) []domain.FlowMetricRecord {
	records := make([]domain.FlowMetricRecord, 0, len(entries))

	for _, entry := range entries {
		values := make(map[string]float64, len(entry.Metrics))
		for _, m := range entry.Metrics {
			values[m.MetricID] = m.Value
		}

		flowID := entry.FlowDetails.FlowID
		if flowID == "" {
			flowID = unknownFlowID
		}

		records = append(records, domain.FlowMetricRecord{
			Local:               w.Local,
			CollectedAt:         collectedAt,
			FlowID:              flowID,
			FlowName:            entry.FlowDetails.FlowName,
			FlowState:           entry.FlowDetails.FlowState,
			TotalExchanges:      values[metricTotalExchanges],
			SuccessfulExchanges: values[metricSuccessfulExchanges],
			FailedExchanges:     values[metricFailedExchanges],
			InflightExchanges:   values[metricInflightExchanges],
			AvgResponseTimeMs:   values[metricAvgResponseMillis],
			AvgProcessingTimeMs: values[metricAvgProcessingMillis],
		})
	}

	return records
}
