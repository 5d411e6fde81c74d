package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/country-currency-api/internal/model"
	"github.com/iliyamo/country-currency-api/internal/repository"
)

// fakeStore implements CountryStore in memory with the same
// case-insensitive name semantics as the MySQL collation.
type fakeStore struct {
	countries  []*model.Country
	status     *model.RefreshStatus
	lastFilter repository.CountryFilter
}

func (f *fakeStore) List(ctx context.Context, filter repository.CountryFilter) ([]*model.Country, error) {
	f.lastFilter = filter
	return f.countries, nil
}

func (f *fakeStore) GetByName(ctx context.Context, name string) (*model.Country, error) {
	for _, c := range f.countries {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, repository.ErrCountryNotFound
}

func (f *fakeStore) DeleteByName(ctx context.Context, name string) error {
	for i, c := range f.countries {
		if strings.EqualFold(c.Name, name) {
			f.countries = append(f.countries[:i], f.countries[i+1:]...)
			return nil
		}
	}
	return repository.ErrCountryNotFound
}

func (f *fakeStore) Status(ctx context.Context) (*model.RefreshStatus, error) {
	if f.status == nil {
		return &model.RefreshStatus{}, nil
	}
	return f.status, nil
}

func testland() *model.Country {
	code := "XYZ"
	rate := 2.0
	gdpVal := 750_000_000.0
	return &model.Country{
		ID:              1,
		Name:            "Testland",
		Population:      1_000_000,
		CurrencyCode:    &code,
		ExchangeRate:    &rate,
		EstimatedGDP:    &gdpVal,
		LastRefreshedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func request(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetCountryCaseInsensitive(t *testing.T) {
	h := NewCountryHandler(&fakeStore{countries: []*model.Country{testland()}})
	c, rec := request(http.MethodGet, "/countries/testland")
	c.SetPath("/countries/:name")
	c.SetParamNames("name")
	c.SetParamValues("testland")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	got := body(t, rec)
	assert.Equal(t, "Testland", got["name"])
	assert.Equal(t, "XYZ", got["currency_code"])
	assert.Equal(t, 750_000_000.0, got["estimated_gdp"])
}

func TestGetCountryNotFound(t *testing.T) {
	h := NewCountryHandler(&fakeStore{})
	c, rec := request(http.MethodGet, "/countries/Nowhere")
	c.SetPath("/countries/:name")
	c.SetParamNames("name")
	c.SetParamValues("Nowhere")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Country not found", body(t, rec)["error"])
}

func TestGetCountryNullFieldsStayNull(t *testing.T) {
	code := "XYZ"
	h := NewCountryHandler(&fakeStore{countries: []*model.Country{{
		Name:         "Rateless",
		Population:   10,
		CurrencyCode: &code, // known currency, unknown rate
	}}})
	c, rec := request(http.MethodGet, "/countries/Rateless")
	c.SetPath("/countries/:name")
	c.SetParamNames("name")
	c.SetParamValues("Rateless")

	require.NoError(t, h.Get(c))
	got := body(t, rec)
	assert.Equal(t, "XYZ", got["currency_code"])
	assert.Nil(t, got["exchange_rate"], "unknown rate serializes as null")
	assert.Nil(t, got["estimated_gdp"], "unknown gdp serializes as null, not 0")
}

func TestListPassesFilter(t *testing.T) {
	store := &fakeStore{countries: []*model.Country{testland()}}
	h := NewCountryHandler(store)
	c, rec := request(http.MethodGet, "/countries?region=Testia&currency=XYZ&sort=gdp_desc")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Testia", store.lastFilter.Region)
	assert.Equal(t, "XYZ", store.lastFilter.Currency)
	assert.Equal(t, repository.SortGDPDesc, store.lastFilter.Sort)
}

func TestListEmpty(t *testing.T) {
	h := NewCountryHandler(&fakeStore{countries: []*model.Country{}})
	c, rec := request(http.MethodGet, "/countries")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDeleteCountry(t *testing.T) {
	store := &fakeStore{countries: []*model.Country{testland()}}
	h := NewCountryHandler(store)
	invalidated := 0
	h.Invalidate = func(ctx context.Context) { invalidated++ }

	c, rec := request(http.MethodDelete, "/countries/TESTLAND")
	c.SetPath("/countries/:name")
	c.SetParamNames("name")
	c.SetParamValues("TESTLAND")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted", body(t, rec)["message"])
	assert.Empty(t, store.countries)
	assert.Equal(t, 1, invalidated)

	// Second delete misses.
	c, rec = request(http.MethodDelete, "/countries/TESTLAND")
	c.SetPath("/countries/:name")
	c.SetParamNames("name")
	c.SetParamValues("TESTLAND")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, invalidated, "a miss must not invalidate the cache")
}

func TestStatusBeforeFirstRefresh(t *testing.T) {
	h := NewCountryHandler(&fakeStore{})
	c, rec := request(http.MethodGet, "/status")

	require.NoError(t, h.Status(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	got := body(t, rec)
	assert.Equal(t, 0.0, got["total_countries"])
	assert.Nil(t, got["last_refreshed_at"])
}

func TestStatusAfterRefresh(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewCountryHandler(&fakeStore{status: &model.RefreshStatus{TotalCountries: 250, LastRefreshedAt: &ts}})
	c, rec := request(http.MethodGet, "/status")

	require.NoError(t, h.Status(c))
	got := body(t, rec)
	assert.Equal(t, 250.0, got["total_countries"])
	assert.Equal(t, "2024-06-01T12:00:00Z", got["last_refreshed_at"])
}

func TestSummaryImageNotFound(t *testing.T) {
	h := NewImageHandler(filepath.Join(t.TempDir(), "summary.png"))
	c, rec := request(http.MethodGet, "/countries/image")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Summary image not found", body(t, rec)["error"])
}

func TestSummaryImageServed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644))

	h := NewImageHandler(path)
	c, rec := request(http.MethodGet, "/countries/image")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.Bytes())
}
