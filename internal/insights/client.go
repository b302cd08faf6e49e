// Package insights is the HTTP client for the integration-insights
// metrics API. It fetches the raw flow metrics for one hourly window and
// normalizes the payload shape at this boundary: the API may return a
// single flow entry object or an array of them, and callers always see
// a flat []FlowEntry.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"oikenops/flowmetrics/internal/domain"
	"oikenops/flowmetrics/internal/retry"
)

const (
	// DefaultEndpoint is the production metrics endpoint.
	DefaultEndpoint = "https://api.ch.utilihive.io/metercloud-integration-insights/api/v1/metrics/oiken-prod"

	requestTimeout = 30 * time.Second

	// apiTimeFormat is the query-parameter timestamp format: UTC with
	// millisecond precision and a literal Z suffix.
	apiTimeFormat = "2006-01-02T15:04:05.000Z"
)

// Client fetches flow metrics for hourly windows.
type Client struct {
	endpoint string
	token    string
	client   *http.Client

	// Retry controls per-window retry behavior. The zero value (or
	// MaxAttempts <= 1) disables retries entirely.
	Retry retry.Config
}

// NewClient creates a Client for the given endpoint and bearer token.
// An empty endpoint selects DefaultEndpoint.
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// FetchWindow performs one authenticated GET for the window's UTC range
// and returns the normalized flow entries. All failures (transport,
// non-2xx status, malformed JSON) are reported as *domain.FetchError so
// the pipeline can skip the window without aborting the run.
func (c *Client) FetchWindow(ctx context.Context, w domain.TimeWindow) ([]FlowEntry, error) {
	var entries []FlowEntry

	fetch := func() error {
		var err error
		entries, err = c.fetchOnce(ctx, w)
		return err
	}

	var err error
	if c.Retry.MaxAttempts > 1 {
		err = retry.Do(ctx, c.Retry, retry.IsRetryable, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, &domain.FetchError{Window: w, Err: err}
	}
	return entries, nil
}

func (c *Client) fetchOnce(ctx context.Context, w domain.TimeWindow) ([]FlowEntry, error) {
	query := url.Values{}
	query.Set("fromDatetimeInclusive", w.FromUTC.UTC().Format(apiTimeFormat))
	query.Set("toDatetimeExclusive", w.ToUTC.UTC().Format(apiTimeFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	entries, err := normalizePayload(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return entries, nil
}

// normalizePayload converts the raw JSON body, which may be a single
// object, an array of objects, or null, into a flat entry list.
// Non-object array elements carry no flow data and are skipped.
func normalizePayload(body []byte) ([]FlowEntry, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		entries := make([]FlowEntry, 0, len(elems))
		for _, elem := range elems {
			var e FlowEntry
			if err := json.Unmarshal(elem, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return entries, nil
	case '{':
		var e FlowEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return []FlowEntry{e}, nil
	default:
		return nil, fmt.Errorf("unexpected payload shape: %s", snippet(raw))
	}
}

func snippet(b []byte) string {
	if len(b) > 40 {
		b = b[:40]
	}
	return string(b)
}
