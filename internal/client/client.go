// Package client wraps the two upstream data sources: the REST Countries
// directory and the USD exchange-rate table.  Each client performs one
// bounded HTTP call and either returns its full payload or fails with an
// *UpstreamError naming the source.  The clients never retry and never
// expose partial results; retry policy belongs to the caller, and the
// refresh flow deliberately has none (fail fast).
package client

import (
	"fmt"
	"net/http"
	"time"
)

// Source names used in upstream error reporting.
const (
	SourceCountries = "countries_api"
	SourceRates     = "exchange_rates_api"
)

// UpstreamError is the single failure outcome of an upstream call.  It
// covers network errors, timeouts, non-success status codes and malformed
// payloads uniformly: callers branch only on "the source is unavailable"
// and keep the wrapped detail for diagnostics.
type UpstreamError struct {
	Source string // which upstream failed (SourceCountries or SourceRates)
	Err    error  // underlying cause
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// newHTTPClient builds the shared client shape: one timeout bounding the
// whole call, default transport otherwise.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
