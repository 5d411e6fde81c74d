package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/country-currency-api/internal/client"
    "github.com/iliyamo/country-currency-api/internal/refresh"
)

// Refresher runs one refresh cycle.  The coordinator satisfies this; a
// fake satisfies it in tests.
type Refresher interface {
    Refresh(ctx context.Context) (*refresh.Result, error)
}

// RefreshHandler serves POST /countries/refresh.
type RefreshHandler struct {
    Coordinator Refresher
}

// NewRefreshHandler constructs a RefreshHandler over the given coordinator.
func NewRefreshHandler(coordinator Refresher) *RefreshHandler {
    return &RefreshHandler{Coordinator: coordinator}
}

// Refresh triggers a full refresh cycle and maps the coordinator's
// outcomes onto the HTTP contract: 409 while another refresh holds the
// guard, 503 when an upstream is unavailable (with the failing source in
// the details), 500 on storage failure, 200 with the committed totals on
// success.
func (h *RefreshHandler) Refresh(c echo.Context) error {
    result, err := h.Coordinator.Refresh(c.Request().Context())
    if err != nil {
        if errors.Is(err, refresh.ErrRefreshInProgress) {
            return c.JSON(http.StatusConflict, map[string]string{"error": "Refresh already in progress"})
        }
        var upstream *client.UpstreamError
        if errors.As(err, &upstream) {
            return c.JSON(http.StatusServiceUnavailable, map[string]string{
                "error":   "External data source unavailable",
                "details": upstream.Error(),
            })
        }
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
    }
    return c.JSON(http.StatusOK, map[string]any{
        "message":           "Countries refreshed successfully",
        "total_countries":   result.TotalCountries,
        "last_refreshed_at": result.LastRefreshedAt,
    })
}
