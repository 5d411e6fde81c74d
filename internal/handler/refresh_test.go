package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/country-currency-api/internal/client"
	"github.com/iliyamo/country-currency-api/internal/refresh"
)

type fakeRefresher struct {
	result *refresh.Result
	err    error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*refresh.Result, error) {
	return f.result, f.err
}

func TestRefreshSuccessResponse(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewRefreshHandler(&fakeRefresher{result: &refresh.Result{TotalCountries: 250, LastRefreshedAt: ts}})
	c, rec := request(http.MethodPost, "/countries/refresh")

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	got := body(t, rec)
	assert.Equal(t, "Countries refreshed successfully", got["message"])
	assert.Equal(t, 250.0, got["total_countries"])
	assert.Equal(t, "2024-06-01T12:00:00Z", got["last_refreshed_at"])
}

func TestRefreshConflictResponse(t *testing.T) {
	h := NewRefreshHandler(&fakeRefresher{err: refresh.ErrRefreshInProgress})
	c, rec := request(http.MethodPost, "/countries/refresh")

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Refresh already in progress", body(t, rec)["error"])
}

func TestRefreshUpstreamUnavailableResponse(t *testing.T) {
	h := NewRefreshHandler(&fakeRefresher{
		err: &client.UpstreamError{Source: client.SourceRates, Err: errors.New("timeout")},
	})
	c, rec := request(http.MethodPost, "/countries/refresh")

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	got := body(t, rec)
	assert.Equal(t, "External data source unavailable", got["error"])
	assert.Contains(t, got["details"], client.SourceRates)
}

func TestRefreshStorageFailureResponse(t *testing.T) {
	h := NewRefreshHandler(&fakeRefresher{err: errors.New("commit refresh batch: deadlock")})
	c, rec := request(http.MethodPost, "/countries/refresh")

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body(t, rec)["error"])
}
