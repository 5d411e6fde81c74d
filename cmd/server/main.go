package main // Entry point package

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/country-currency-api/internal/client"
	"github.com/iliyamo/country-currency-api/internal/config"
	"github.com/iliyamo/country-currency-api/internal/database"
	"github.com/iliyamo/country-currency-api/internal/gdp"
	"github.com/iliyamo/country-currency-api/internal/handler"
	img "github.com/iliyamo/country-currency-api/internal/image"
	"github.com/iliyamo/country-currency-api/internal/metrics"
	"github.com/iliyamo/country-currency-api/internal/middleware"
	"github.com/iliyamo/country-currency-api/internal/refresh"
	"github.com/iliyamo/country-currency-api/internal/repository"
	"github.com/iliyamo/country-currency-api/internal/router"
	queue_publisher "github.com/iliyamo/country-currency-api/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.InitSchema(ctx, db); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	// Redis is optional; with no client the cache middleware degrades to
	// a passthrough and invalidation becomes a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	invalidate := func(ctx context.Context) {
		middleware.InvalidateCache(ctx, cacheCfg, rdb)
	}

	repo := repository.NewCountryRepo(db)
	imagePath := filepath.Join(cfg.CacheDir, "summary.png")

	coordinator := refresh.NewCoordinator(
		client.NewCountriesClient(cfg.CountriesAPIURL, cfg.UpstreamTimeout),
		client.NewRatesClient(cfg.ExchangeAPIURL, cfg.UpstreamTimeout),
		repo,
		gdp.New(),
		img.Render,
		imagePath,
	).
		WithPublisher(queue_publisher.PublishRefreshCompleted).
		WithCacheInvalidator(invalidate).
		WithMetrics(metrics.NewRefreshMetrics())

	countries := handler.NewCountryHandler(repo)
	countries.Invalidate = invalidate

	e := echo.New()
	router.Register(e,
		countries,
		handler.NewRefreshHandler(coordinator),
		handler.NewImageHandler(imagePath),
		middleware.NewRedisCache(cacheCfg, rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
