package insights

// FlowEntry is one flow's metrics as reported by the API for a window.
type FlowEntry struct {
	FlowDetails FlowDetails   `json:"flowDetails"`
	Metrics     []MetricValue `json:"metrics"`
}

// FlowDetails identifies the integration flow an entry belongs to.
type FlowDetails struct {
	FlowID    string `json:"flowId"`
	FlowName  string `json:"flowName"`
	FlowState string `json:"flowState"`
}

// MetricValue is a single (metricId, value) pair. The API reports each
// counter and gauge as its own pair rather than as named fields.
type MetricValue struct {
	MetricID string  `json:"metricId"`
	Value    float64 `json:"value"`
}
