package model

import "time"

// Country represents one country row enriched with exchange-rate data
// during a refresh.  It corresponds to a row in the `countries` table.
// Names are unique case-insensitively (enforced by the table collation).
//
// Optional columns are pointers so that JSON output distinguishes a
// missing value (null) from a real zero.  The distinction matters for
// EstimatedGDP: a country without any currency has EstimatedGDP = 0
// exactly, while a country whose currency has no known exchange rate
// has EstimatedGDP = nil.  The two states must never be merged.
type Country struct {
	ID              uint64     `json:"id"`                // countries.id
	Name            string     `json:"name"`              // countries.name
	Capital         *string    `json:"capital"`           // countries.capital
	Region          *string    `json:"region"`            // countries.region
	Population      int64      `json:"population"`        // countries.population
	CurrencyCode    *string    `json:"currency_code"`     // countries.currency_code
	ExchangeRate    *float64   `json:"exchange_rate"`     // countries.exchange_rate
	EstimatedGDP    *float64   `json:"estimated_gdp"`     // countries.estimated_gdp
	FlagURL         *string    `json:"flag_url"`          // countries.flag_url
	LastRefreshedAt time.Time  `json:"last_refreshed_at"` // countries.last_refreshed_at
}
