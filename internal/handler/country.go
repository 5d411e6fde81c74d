// Package handler contains the HTTP handlers of the API.  Handlers
// translate store and coordinator outcomes into the JSON bodies of the
// public contract; all errors carry a stable "error" field with optional
// "details".
package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/country-currency-api/internal/model"
    "github.com/iliyamo/country-currency-api/internal/repository"
)

// CountryStore is the slice of the repository the read/delete handlers
// need.  Declared here so handlers can be exercised against a fake store.
type CountryStore interface {
    List(ctx context.Context, f repository.CountryFilter) ([]*model.Country, error)
    GetByName(ctx context.Context, name string) (*model.Country, error)
    DeleteByName(ctx context.Context, name string) error
    Status(ctx context.Context) (*model.RefreshStatus, error)
}

// CountryHandler serves the country read, delete and status endpoints.
// Invalidate, when set, drops cached read responses after a delete.
type CountryHandler struct {
    Store      CountryStore
    Invalidate func(ctx context.Context)
}

// NewCountryHandler constructs a CountryHandler over the given store.
func NewCountryHandler(store CountryStore) *CountryHandler {
    return &CountryHandler{Store: store}
}

// List handles GET /countries with optional region, currency and sort
// query parameters.  Unknown sort values fall back to insertion order.
func (h *CountryHandler) List(c echo.Context) error {
    f := repository.CountryFilter{
        Region:   c.QueryParam("region"),
        Currency: c.QueryParam("currency"),
        Sort:     c.QueryParam("sort"),
    }
    items, err := h.Store.List(c.Request().Context(), f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
    }
    return c.JSON(http.StatusOK, items)
}

// Get handles GET /countries/:name with a case-insensitive name match.
func (h *CountryHandler) Get(c echo.Context) error {
    name, err := countryName(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "Validation failed", "details": "name is required"})
    }
    country, err := h.Store.GetByName(c.Request().Context(), name)
    if err != nil {
        if err == repository.ErrCountryNotFound {
            return c.JSON(http.StatusNotFound, map[string]string{"error": "Country not found"})
        }
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
    }
    return c.JSON(http.StatusOK, country)
}

// Delete handles DELETE /countries/:name.  Deletion is the only way a
// row ever leaves the table; refreshes never prune.
func (h *CountryHandler) Delete(c echo.Context) error {
    name, err := countryName(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "Validation failed", "details": "name is required"})
    }
    if err := h.Store.DeleteByName(c.Request().Context(), name); err != nil {
        if err == repository.ErrCountryNotFound {
            return c.JSON(http.StatusNotFound, map[string]string{"error": "Country not found"})
        }
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
    }
    if h.Invalidate != nil {
        h.Invalidate(c.Request().Context())
    }
    return c.JSON(http.StatusOK, map[string]string{"message": "Deleted"})
}

// Status handles GET /status.  Before the first successful refresh the
// timestamp is null and the total is zero.
func (h *CountryHandler) Status(c echo.Context) error {
    s, err := h.Store.Status(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
    }
    return c.JSON(http.StatusOK, s)
}

// countryName extracts and validates the :name path parameter.
func countryName(c echo.Context) (string, error) {
    name := strings.TrimSpace(c.Param("name"))
    if name == "" {
        return "", echo.ErrBadRequest
    }
    return name, nil
}
