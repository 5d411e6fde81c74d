package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RawCountry is one entry of the country directory payload, exactly as
// the upstream serves it.  Population may legitimately be zero; the
// currencies slice may be empty.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population int64         `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// RawCurrency carries the currency code associated with a country.  The
// upstream also sends name and symbol, which this service does not use.
type RawCurrency struct {
	Code string `json:"code"`
}

// CountriesClient fetches the country directory from the configured URL.
type CountriesClient struct {
	url    string
	client *http.Client
}

// NewCountriesClient constructs a client for the country directory
// endpoint with the given per-call timeout.
func NewCountriesClient(url string, timeout time.Duration) *CountriesClient {
	return &CountriesClient{url: url, client: newHTTPClient(timeout)}
}

// Fetch retrieves the full country directory.  Any failure, including a
// non-2xx response or an undecodable body, is reported as *UpstreamError.
func (c *CountriesClient) Fetch(ctx context.Context) ([]RawCountry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &UpstreamError{Source: SourceCountries, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Source: SourceCountries, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Source: SourceCountries, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out []RawCountry
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UpstreamError{Source: SourceCountries, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return out, nil
}
