// Package pipeline orchestrates a collection run: window generation,
// per-window fetch + flatten + append, and the final daily rollup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"oikenops/flowmetrics/internal/aggregate"
	"oikenops/flowmetrics/internal/dataset"
	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/flatten"
	"oikenops/flowmetrics/internal/insights"
	"oikenops/flowmetrics/internal/retry"
	"oikenops/flowmetrics/internal/services/auth"
	"oikenops/flowmetrics/internal/window"
)

// Options carries the run configuration. It is an explicit value object
// so the window generator and fetcher stay free of ambient state.
type Options struct {
	// Endpoint is the metrics API URL. Empty selects the production default.
	Endpoint string

	// TimezoneOffsetHours converts local wall-clock windows to UTC.
	TimezoneOffsetHours int

	// RequestDelay is the pacing pause between window fetches.
	RequestDelay time.Duration

	// Retry enables per-window retry when MaxAttempts > 1.
	Retry retry.Config
}

// DefaultOptions mirrors the collector's standard configuration:
// UTC+1 local time and 100ms pacing between requests.
func DefaultOptions() Options {
	return Options{
		TimezoneOffsetHours: 1,
		RequestDelay:        100 * time.Millisecond,
	}
}

// Fetcher fetches the flow entries for one window.
type Fetcher interface {
	FetchWindow(ctx context.Context, w domain.TimeWindow) ([]insights.FlowEntry, error)
}

// Pipeline runs the collection sequence over a date range. Windows are
// processed strictly one at a time in chronological order; a fetch
// failure skips the window and is reflected in the run summary, never
// aborting the loop.
type Pipeline struct {
	opts    Options
	fetcher Fetcher
	store   *dataset.Store
	agg     *aggregate.Aggregator

	// log receives progress lines; io.Discard silences them.
	log io.Writer

	now func() time.Time
}

// New assembles a Pipeline with a real API client for the given
// credential token.
func New(opts Options, cred auth.Credential, store *dataset.Store, log io.Writer) *Pipeline {
	client := insights.NewClient(opts.Endpoint, cred.Token)
	client.Retry = opts.Retry
	return NewWithFetcher(opts, client, store, log)
}

// NewWithFetcher assembles a Pipeline around an arbitrary Fetcher.
// Intended for testing.
func NewWithFetcher(opts Options, fetcher Fetcher, store *dataset.Store, log io.Writer) *Pipeline {
	if log == nil {
		log = io.Discard
	}
	return &Pipeline{
		opts:    opts,
		fetcher: fetcher,
		store:   store,
		agg:     aggregate.New(store),
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides the wall clock. Intended for testing.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
	p.agg.SetClock(now)
}

// Run executes one collection over [start, end] (calendar dates, local
// time). Preconditions (credential validity, date range) are checked
// once before any network activity and abort the run immediately; after
// that, per-window failures only reduce WindowsSucceeded.
//
// Cancelling ctx stops the run at the next window boundary; hourly rows
// already appended remain valid, and the returned summary covers the
// windows processed so far alongside ctx's error.
func (p *Pipeline) Run(ctx context.Context, cred auth.Credential, start, end time.Time) (*domain.RunSummary, error) {
	if err := cred.Validate(p.now()); err != nil {
		return nil, err
	}

	windows, err := window.Generate(start, end, p.opts.TimezoneOffsetHours)
	if err != nil {
		return nil, err
	}

	runDate := p.now().Format("2006-01-02")
	summary := &domain.RunSummary{
		WindowsTotal: len(windows),
		HourlyPath:   p.store.HourlyPath(runDate),
	}

	fmt.Fprintf(p.log, "Collecting %d windows into %s\n", len(windows), summary.HourlyPath)

	for i, w := range windows {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		entries, err := p.fetcher.FetchWindow(ctx, w)
		if err != nil {
			fmt.Fprintf(p.log, "  [%d/%d] %s: %v\n", i+1, len(windows), w.Local.Format("2006-01-02 15:04"), err)
		} else {
			records := flatten.Records(w, entries, p.now())
			if err := p.store.AppendHourly(runDate, records); err != nil {
				// Persistence failure is not a skippable window; without a
				// readable hourly dataset the whole run is pointless.
				return summary, err
			}
			summary.WindowsSucceeded++
			summary.RecordsWritten += len(records)
			fmt.Fprintf(p.log, "  [%d/%d] %s: %d record(s)\n", i+1, len(windows), w.Local.Format("2006-01-02 15:04"), len(records))
		}

		if i < len(windows)-1 && p.opts.RequestDelay > 0 {
			if !retry.Sleep(ctx, p.opts.RequestDelay) {
				return summary, ctx.Err()
			}
		}
	}

	if _, err := p.agg.Run(runDate); err != nil {
		if errors.Is(err, domain.ErrEmptyDataset) || errors.Is(err, domain.ErrDatasetNotFound) {
			fmt.Fprintf(p.log, "Warning: no hourly data to aggregate: %v\n", err)
			return summary, nil
		}
		return summary, err
	}
	summary.DailyPath = p.store.DailyPath(runDate)

	return summary, nil
}
