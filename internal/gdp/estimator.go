// Package gdp derives the estimated-GDP figures stored with each country.
// The estimator is pure apart from its multiplier source, which is
// injected so tests can pin it to a constant.
package gdp

import (
	"math/rand"

	"github.com/iliyamo/country-currency-api/internal/client"
)

// Multiplier bounds for the GDP estimate, inclusive.
const (
	MultiplierMin = 1000.0
	MultiplierMax = 2000.0
)

// Derived is the exchange-rate view of one country produced during a
// refresh join.  Pointer fields distinguish "absent" from zero:
//
//	no currency at all      -> CurrencyCode nil, ExchangeRate nil, EstimatedGDP = 0 (exact)
//	currency with no rate   -> CurrencyCode set, ExchangeRate nil, EstimatedGDP nil
//	currency with a rate    -> all three set
//
// Collapsing the second case into zero would lose information the API
// contract depends on.
type Derived struct {
	CurrencyCode *string
	ExchangeRate *float64
	EstimatedGDP *float64
}

// Estimator joins one raw country entry with the exchange-rate mapping.
type Estimator struct {
	multiplier func() float64
}

// New returns an Estimator drawing multipliers uniformly at random from
// [MultiplierMin, MultiplierMax].
func New() *Estimator {
	return NewWithMultiplier(func() float64 {
		return MultiplierMin + rand.Float64()*(MultiplierMax-MultiplierMin)
	})
}

// NewWithMultiplier returns an Estimator using the supplied multiplier
// source.  Tests use this to make the computation reproducible.
func NewWithMultiplier(multiplier func() float64) *Estimator {
	return &Estimator{multiplier: multiplier}
}

// Estimate produces the derived record for one country entry.  The
// country's currency code is the first of its associated currencies in
// source order.  A non-positive rate in the mapping is treated the same
// as a missing one; dividing by it would be meaningless.
func (e *Estimator) Estimate(raw client.RawCountry, rates map[string]float64) Derived {
	if len(raw.Currencies) == 0 || raw.Currencies[0].Code == "" {
		zero := 0.0
		return Derived{EstimatedGDP: &zero}
	}

	code := raw.Currencies[0].Code
	rate, ok := rates[code]
	if !ok || rate <= 0 {
		return Derived{CurrencyCode: &code}
	}

	estimated := float64(raw.Population) * e.multiplier() / rate
	return Derived{
		CurrencyCode: &code,
		ExchangeRate: &rate,
		EstimatedGDP: &estimated,
	}
}
