package refresh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/country-currency-api/internal/client"
	"github.com/iliyamo/country-currency-api/internal/gdp"
	img "github.com/iliyamo/country-currency-api/internal/image"
	"github.com/iliyamo/country-currency-api/internal/model"
	"github.com/iliyamo/country-currency-api/internal/queue"
)

type fakeCountries struct {
	out     []client.RawCountry
	err     error
	started chan struct{} // closed once Fetch begins, when set
	release chan struct{} // Fetch blocks until closed, when set
}

func (f *fakeCountries) Fetch(ctx context.Context) ([]client.RawCountry, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.out, f.err
}

type fakeRates struct {
	out map[string]float64
	err error
}

func (f *fakeRates) Fetch(ctx context.Context) (map[string]float64, error) {
	return f.out, f.err
}

type fakeStore struct {
	mu        sync.Mutex
	batches   [][]model.Country
	upsertErr error
	top       []*model.Country
	topErr    error
}

func (f *fakeStore) UpsertBatch(ctx context.Context, records []model.Country, refreshedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeStore) TopByGDP(ctx context.Context, n int) ([]*model.Country, error) {
	return f.top, f.topErr
}

func (f *fakeStore) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func testCoordinator(t *testing.T, countries CountrySource, rates RateSource, store Store) *Coordinator {
	t.Helper()
	return NewCoordinator(
		countries, rates, store,
		gdp.NewWithMultiplier(func() float64 { return 1500 }),
		img.Render,
		filepath.Join(t.TempDir(), "summary.png"),
	)
}

func TestRefreshSuccess(t *testing.T) {
	gdpVal := 750_000_000.0
	store := &fakeStore{
		top: []*model.Country{{Name: "Testland", EstimatedGDP: &gdpVal}},
	}
	countries := &fakeCountries{out: []client.RawCountry{
		{Name: "Testland", Capital: "Testville", Population: 1_000_000, Currencies: []client.RawCurrency{{Code: "XYZ"}}},
		{Name: "Atlantis", Population: 5_000},
		{Name: ""}, // nameless stubs are skipped
	}}
	rates := &fakeRates{out: map[string]float64{"XYZ": 2.0}}

	var published []queue.RefreshCompletedEvent
	invalidated := 0
	c := testCoordinator(t, countries, rates, store).
		WithPublisher(func(ctx context.Context, ev queue.RefreshCompletedEvent) error {
			published = append(published, ev)
			return nil
		}).
		WithCacheInvalidator(func(ctx context.Context) { invalidated++ })

	result, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCountries)
	assert.False(t, result.LastRefreshedAt.IsZero())

	require.Equal(t, 1, store.batchCount())
	batch := store.batches[0]
	require.Len(t, batch, 2)

	testland := batch[0]
	assert.Equal(t, "Testland", testland.Name)
	require.NotNil(t, testland.CurrencyCode)
	assert.Equal(t, "XYZ", *testland.CurrencyCode)
	require.NotNil(t, testland.EstimatedGDP)
	assert.Equal(t, 750_000_000.0, *testland.EstimatedGDP)

	atlantis := batch[1]
	assert.Nil(t, atlantis.CurrencyCode)
	require.NotNil(t, atlantis.EstimatedGDP)
	assert.Equal(t, 0.0, *atlantis.EstimatedGDP)

	// Summary image was written after the commit.
	_, statErr := os.Stat(c.imagePath)
	assert.NoError(t, statErr)

	require.Len(t, published, 1)
	assert.Equal(t, 2, published[0].TotalCountries)
	assert.Equal(t, "Testland", published[0].TopCountry)
	assert.Equal(t, 1, invalidated)
}

func TestRefreshUpstreamFailureLeavesStoreUntouched(t *testing.T) {
	store := &fakeStore{}
	countries := &fakeCountries{err: &client.UpstreamError{Source: client.SourceCountries, Err: errors.New("boom")}}
	rates := &fakeRates{out: map[string]float64{}}

	c := testCoordinator(t, countries, rates, store)
	_, err := c.Refresh(context.Background())

	var upstream *client.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, client.SourceCountries, upstream.Source)
	assert.Zero(t, store.batchCount(), "no partial data may be written")
	_, statErr := os.Stat(c.imagePath)
	assert.Error(t, statErr, "no image without a successful refresh")
}

func TestRefreshRateFailureLeavesStoreUntouched(t *testing.T) {
	store := &fakeStore{}
	countries := &fakeCountries{out: []client.RawCountry{{Name: "Testland", Population: 1}}}
	rates := &fakeRates{err: &client.UpstreamError{Source: client.SourceRates, Err: errors.New("down")}}

	c := testCoordinator(t, countries, rates, store)
	_, err := c.Refresh(context.Background())

	var upstream *client.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, client.SourceRates, upstream.Source)
	assert.Zero(t, store.batchCount())
}

func TestRefreshStorageFailure(t *testing.T) {
	store := &fakeStore{upsertErr: errors.New("deadlock")}
	countries := &fakeCountries{out: []client.RawCountry{{Name: "Testland", Population: 1}}}
	rates := &fakeRates{out: map[string]float64{}}

	c := testCoordinator(t, countries, rates, store)
	_, err := c.Refresh(context.Background())

	require.Error(t, err)
	var upstream *client.UpstreamError
	assert.False(t, errors.As(err, &upstream), "storage failure is not an upstream outcome")
	_, statErr := os.Stat(c.imagePath)
	assert.Error(t, statErr, "rendering must not run after a failed commit")
}

func TestRefreshRenderFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{topErr: errors.New("query failed")}
	countries := &fakeCountries{out: []client.RawCountry{{Name: "Testland", Population: 1}}}
	rates := &fakeRates{out: map[string]float64{}}

	c := testCoordinator(t, countries, rates, store)
	result, err := c.Refresh(context.Background())

	require.NoError(t, err, "a refresh is successful even when the image cannot be regenerated")
	assert.Equal(t, 1, result.TotalCountries)
}

func TestRefreshConcurrentRejection(t *testing.T) {
	store := &fakeStore{}
	countries := &fakeCountries{
		out:     []client.RawCountry{{Name: "Testland", Population: 1}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	rates := &fakeRates{out: map[string]float64{}}

	c := testCoordinator(t, countries, rates, store)

	done := make(chan error, 1)
	go func() {
		_, err := c.Refresh(context.Background())
		done <- err
	}()

	<-countries.started // first refresh is inside Fetching and holds the guard

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)
	assert.Zero(t, store.batchCount(), "the rejected call must not touch stored data")

	close(countries.release)
	require.NoError(t, <-done, "the in-flight refresh is unaffected by the rejection")
	assert.Equal(t, 1, store.batchCount())
}
