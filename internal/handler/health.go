package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Root handles GET / and returns a short service descriptor listing the
// available endpoints.
func Root(c echo.Context) error {
    return c.JSON(http.StatusOK, map[string]any{
        "message": "Country Currency & Exchange API",
        "endpoints": map[string]string{
            "refresh": "POST /countries/refresh",
            "get_all": "GET /countries",
            "get_one": "GET /countries/:name",
            "delete":  "DELETE /countries/:name",
            "status":  "GET /status",
            "image":   "GET /countries/image",
        },
    })
}
