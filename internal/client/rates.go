package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ratesPayload mirrors the open.er-api.com response envelope.  Rates are
// units of the keyed currency per 1 USD.
type ratesPayload struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// RatesClient fetches the USD exchange-rate table from the configured URL.
type RatesClient struct {
	url    string
	client *http.Client
}

// NewRatesClient constructs a client for the exchange-rate endpoint with
// the given per-call timeout.
func NewRatesClient(url string, timeout time.Duration) *RatesClient {
	return &RatesClient{url: url, client: newHTTPClient(timeout)}
}

// Fetch retrieves the full currency->rate mapping.  A payload whose
// result marker is not "success" counts as an upstream failure even when
// the HTTP status was 200.
func (c *RatesClient) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &UpstreamError{Source: SourceRates, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Source: SourceRates, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Source: SourceRates, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Source: SourceRates, Err: fmt.Errorf("decode payload: %w", err)}
	}
	if payload.Result != "success" {
		return nil, &UpstreamError{Source: SourceRates, Err: fmt.Errorf("upstream reported result %q", payload.Result)}
	}
	if payload.Rates == nil {
		payload.Rates = map[string]float64{}
	}
	return payload.Rates, nil
}
