// Package aggregate computes the daily rollup of an hourly dataset.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"
)

// Aggregator recomputes the daily dataset from the full hourly dataset
// of a run. The rollup is a pure function of the hourly rows (plus the
// collection timestamp stamp): running it twice over an unchanged
// dataset with the same clock produces identical output.
type Aggregator struct {
	store *dataset.Store

	// now stamps the aggregates' collection timestamp. Overridable in tests.
	now func() time.Time
}

// New creates an Aggregator over the given store.
func New(store *dataset.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// groupKey identifies one daily rollup group.
type groupKey struct {
	date      string
	flowID    string
	flowName  string
	flowState string
}

// accumulator collects the per-group sums and counts.
type accumulator struct {
	total      float64
	successful float64
	failed     float64

	inflightSum   float64
	responseSum   float64
	processingSum float64
	rows          float64
}

// Run reads the hourly dataset for runDate, rolls it up per
// (date, flowId, flowName, flowState), and replaces the daily dataset.
// Exchange counters are summed; inflight and the latency fields are
// averaged over the hourly rows (mean of hourly means). It returns the
// written rows, or ErrEmptyDataset when the hourly dataset has no rows,
// in which case no daily dataset is produced.
func (a *Aggregator) Run(runDate string) ([]domain.DailyAggregate, error) {
	records, err := a.store.ReadHourly(runDate)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("hourly dataset for %s: %w", runDate, domain.ErrEmptyDataset)
	}

	groups := make(map[groupKey]*accumulator)
	for _, r := range records {
		key := groupKey{date: r.Date(), flowID: r.FlowID, flowName: r.FlowName, flowState: r.FlowState}
		acc := groups[key]
		if acc == nil {
			acc = &accumulator{}
			groups[key] = acc
		}
		acc.total += r.TotalExchanges
		acc.successful += r.SuccessfulExchanges
		acc.failed += r.FailedExchanges
		acc.inflightSum += r.InflightExchanges
		acc.responseSum += r.AvgResponseTimeMs
		acc.processingSum += r.AvgProcessingTimeMs
		acc.rows++
	}

	stamp := a.now()
	rollup := make([]domain.DailyAggregate, 0, len(groups))
	for key, acc := range groups {
		rollup = append(rollup, domain.DailyAggregate{
			Date:                key.date,
			CollectedAt:         stamp,
			FlowID:              key.flowID,
			FlowName:            key.flowName,
			FlowState:           key.flowState,
			TotalExchanges:      acc.total,
			SuccessfulExchanges: acc.successful,
			FailedExchanges:     acc.failed,
			InflightExchanges:   acc.inflightSum / acc.rows,
			AvgResponseTimeMs:   acc.responseSum / acc.rows,
			AvgProcessingTimeMs: acc.processingSum / acc.rows,
		})
	}

	// Deterministic output order regardless of map iteration.
	sort.Slice(rollup, func(i, j int) bool {
		a, b := rollup[i], rollup[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.FlowID != b.FlowID {
			return a.FlowID < b.FlowID
		}
		if a.FlowName != b.FlowName {
			return a.FlowName < b.FlowName
		}
		return a.FlowState < b.FlowState
	})

	if err := a.store.WriteDaily(runDate, rollup); err != nil {
		return nil, err
	}
	return rollup, nil
}

// SetClock overrides the timestamp source. Intended for testing.
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }
