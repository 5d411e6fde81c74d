// Package refresh orchestrates one end-to-end refresh cycle:
// fetch both upstreams -> join into derived records -> commit the batch
// and status in one transaction -> regenerate the summary image.  The
// whole cycle runs under a non-blocking process-wide guard; a second
// refresh arriving while one is in flight is rejected immediately, never
// queued.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/country-currency-api/internal/client"
	"github.com/iliyamo/country-currency-api/internal/gdp"
	img "github.com/iliyamo/country-currency-api/internal/image"
	"github.com/iliyamo/country-currency-api/internal/metrics"
	"github.com/iliyamo/country-currency-api/internal/model"
	"github.com/iliyamo/country-currency-api/internal/queue"
)

// ErrRefreshInProgress is returned when a refresh is requested while
// another one holds the guard.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// How many countries the summary image ranks.
const topCount = 5

// CountrySource fetches the raw country directory.
type CountrySource interface {
	Fetch(ctx context.Context) ([]client.RawCountry, error)
}

// RateSource fetches the currency->rate mapping.
type RateSource interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// Store is the slice of the country repository the coordinator writes
// through.
type Store interface {
	UpsertBatch(ctx context.Context, records []model.Country, refreshedAt time.Time) error
	TopByGDP(ctx context.Context, n int) ([]*model.Country, error)
}

// RenderFunc turns a summary into encoded PNG bytes.
type RenderFunc func(img.Summary) ([]byte, error)

// PublishFunc emits the refresh-completed event to the broker.
type PublishFunc func(ctx context.Context, ev queue.RefreshCompletedEvent) error

// Result is the successful outcome of one refresh cycle.
type Result struct {
	TotalCountries  int
	LastRefreshedAt time.Time
}

// Coordinator serializes refreshes and walks one invocation through
// fetching, joining, committing and rendering.  Every collaborator
// except the sources and store is optional and skipped when nil.
type Coordinator struct {
	mu        sync.Mutex // held for the full duration of one refresh
	countries CountrySource
	rates     RateSource
	store     Store
	estimator *gdp.Estimator
	render    RenderFunc
	imagePath string

	publish    PublishFunc             // optional broker notification
	invalidate func(ctx context.Context) // optional response-cache invalidation
	metrics    *metrics.RefreshMetrics   // optional instrumentation
}

// NewCoordinator wires the mandatory collaborators.  imagePath is where
// the rendered summary PNG is persisted (overwritten each refresh).
func NewCoordinator(countries CountrySource, rates RateSource, store Store, estimator *gdp.Estimator, render RenderFunc, imagePath string) *Coordinator {
	return &Coordinator{
		countries: countries,
		rates:     rates,
		store:     store,
		estimator: estimator,
		render:    render,
		imagePath: imagePath,
	}
}

// WithPublisher attaches the broker publisher invoked after a successful
// refresh.  Publish failures are logged, never fatal.
func (c *Coordinator) WithPublisher(publish PublishFunc) *Coordinator {
	c.publish = publish
	return c
}

// WithCacheInvalidator attaches a hook that drops cached read responses
// after the batch commits.
func (c *Coordinator) WithCacheInvalidator(invalidate func(ctx context.Context)) *Coordinator {
	c.invalidate = invalidate
	return c
}

// WithMetrics attaches Prometheus instrumentation.
func (c *Coordinator) WithMetrics(m *metrics.RefreshMetrics) *Coordinator {
	c.metrics = m
	return c
}

// Refresh runs one full cycle and returns the committed total and
// timestamp.  Failures before the commit leave the store completely
// untouched.  Rendering failures do not fail the refresh; the previous
// image simply stays in place.
func (c *Coordinator) Refresh(ctx context.Context) (*Result, error) {
	if !c.mu.TryLock() {
		c.countOutcome("rejected")
		return nil, ErrRefreshInProgress
	}
	defer c.mu.Unlock()

	started := time.Now()

	// Fetching: both upstreams in parallel, first failure aborts.
	var (
		raw   []client.RawCountry
		rates map[string]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = c.fetchCountries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = c.fetchRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.countOutcome("upstream_error")
		return nil, err
	}

	// Joining: pure, in memory.
	refreshedAt := time.Now().UTC()
	records := make([]model.Country, 0, len(raw))
	for _, rc := range raw {
		if rc.Name == "" {
			continue // upstream sends the occasional nameless stub
		}
		d := c.estimator.Estimate(rc, rates)
		records = append(records, model.Country{
			Name:            rc.Name,
			Capital:         optional(rc.Capital),
			Region:          optional(rc.Region),
			Population:      rc.Population,
			CurrencyCode:    d.CurrencyCode,
			ExchangeRate:    d.ExchangeRate,
			EstimatedGDP:    d.EstimatedGDP,
			FlagURL:         optional(rc.Flag),
			LastRefreshedAt: refreshedAt,
		})
	}

	// Committing: batch and status land in one transaction.
	if err := c.store.UpsertBatch(ctx, records, refreshedAt); err != nil {
		c.countOutcome("storage_error")
		return nil, fmt.Errorf("commit refresh batch: %w", err)
	}

	c.countOutcome("success")
	if c.metrics != nil {
		c.metrics.RefreshDuration.Observe(time.Since(started).Seconds())
		c.metrics.CountriesStored.Set(float64(len(records)))
	}

	// Rendering and downstream notifications happen after the commit and
	// never roll it back.
	top := c.renderSummary(ctx, len(records), refreshedAt)
	c.notify(ctx, len(records), refreshedAt, top)

	return &Result{TotalCountries: len(records), LastRefreshedAt: refreshedAt}, nil
}

func (c *Coordinator) fetchCountries(ctx context.Context) ([]client.RawCountry, error) {
	started := time.Now()
	out, err := c.countries.Fetch(ctx)
	c.observeFetch(client.SourceCountries, started, err)
	return out, err
}

func (c *Coordinator) fetchRates(ctx context.Context) (map[string]float64, error) {
	started := time.Now()
	out, err := c.rates.Fetch(ctx)
	c.observeFetch(client.SourceRates, started, err)
	return out, err
}

// renderSummary regenerates the PNG from the committed rows and returns
// the top country name for the broker event.  Any failure is logged and
// swallowed.
func (c *Coordinator) renderSummary(ctx context.Context, total int, refreshedAt time.Time) string {
	top, err := c.store.TopByGDP(ctx, topCount)
	if err != nil {
		log.Printf("refresh: load top countries for summary: %v", err)
		return ""
	}
	entries := make([]img.Entry, 0, len(top))
	for _, t := range top {
		entries = append(entries, img.Entry{Name: t.Name, EstimatedGDP: t.EstimatedGDP})
	}
	data, err := c.render(img.Summary{
		TotalCountries:  total,
		Top:             entries,
		LastRefreshedAt: refreshedAt,
	})
	if err != nil {
		log.Printf("refresh: render summary image: %v", err)
		return topName(top)
	}
	if err := os.MkdirAll(filepath.Dir(c.imagePath), 0o755); err != nil {
		log.Printf("refresh: create image dir: %v", err)
		return topName(top)
	}
	if err := os.WriteFile(c.imagePath, data, 0o644); err != nil {
		log.Printf("refresh: write summary image: %v", err)
	}
	return topName(top)
}

// notify fires the optional post-commit hooks: cache invalidation first
// so readers stop seeing pre-refresh bodies, then the broker event.
func (c *Coordinator) notify(ctx context.Context, total int, refreshedAt time.Time, topCountry string) {
	if c.invalidate != nil {
		c.invalidate(ctx)
	}
	if c.publish != nil {
		ev := queue.RefreshCompletedEvent{
			TotalCountries:  total,
			LastRefreshedAt: refreshedAt.Format(time.RFC3339),
			TopCountry:      topCountry,
		}
		if err := c.publish(ctx, ev); err != nil {
			log.Printf("refresh: publish completed event: %v", err)
		}
	}
}

func (c *Coordinator) countOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.RefreshesTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Coordinator) observeFetch(source string, started time.Time, err error) {
	if c.metrics != nil && err == nil {
		c.metrics.UpstreamFetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	}
}

func topName(top []*model.Country) string {
	if len(top) == 0 {
		return ""
	}
	return top[0].Name
}

// optional maps an empty upstream string to a NULL column.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
