package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/country-currency-api/internal/handler"
)

// Register wires every route of the service onto the provided Echo
// instance.  cacheMW is applied to the cacheable read endpoints only;
// the refresh and delete paths must never serve from cache.  The static
// /countries/image route is matched before /countries/:name by Echo's
// router, so "image" is not a reachable country name.
func Register(e *echo.Echo, countries *handler.CountryHandler, refresher *handler.RefreshHandler, image *handler.ImageHandler, cacheMW echo.MiddlewareFunc) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/countries/refresh", refresher.Refresh)
	e.GET("/countries", countries.List, cacheMW)
	e.GET("/countries/image", image.Get)
	e.GET("/countries/:name", countries.Get, cacheMW)
	e.DELETE("/countries/:name", countries.Delete)
	e.GET("/status", countries.Status, cacheMW)
}
