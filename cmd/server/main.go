// Command server wires together configuration, logging, the database
// pool, the Redis cache, the lookup/synonym background refreshers,
// and the HTTP layer into the catalog search core. The teacher repo
// has no standalone entry point to ground this wiring on, so the
// startup shape instead follows the config -> logger -> database ->
// cache -> handlers -> fiber.New -> Listen ordering already
// established across this module's own internal packages, with
// graceful shutdown and a Prometheus /metrics endpoint per spec §8.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/brandeduk/catalog-search/internal/cache"
	"github.com/brandeduk/catalog-search/internal/catalog/esaccel"
	"github.com/brandeduk/catalog-search/internal/catalog/facets"
	"github.com/brandeduk/catalog-search/internal/catalog/lookup"
	"github.com/brandeduk/catalog-search/internal/catalog/paginator"
	"github.com/brandeduk/catalog-search/internal/catalog/pricing"
	"github.com/brandeduk/catalog-search/internal/catalog/queryparser"
	"github.com/brandeduk/catalog-search/internal/catalog/synonym"
	"github.com/brandeduk/catalog-search/internal/config"
	"github.com/brandeduk/catalog-search/internal/database"
	"github.com/brandeduk/catalog-search/internal/handlers"
	"github.com/brandeduk/catalog-search/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "catalog-search")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	redisCache, err := cache.NewRedis(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}

	lookupCache := lookup.New(db, logger)
	if err := lookupCache.Refresh(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial lookup dictionary load")
	}
	go lookupCache.Run(ctx, cfg.LookupRefreshInterval)

	synonymResolver := synonym.New(db, logger)
	if err := synonymResolver.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial synonym load, falling back to built-in dictionary")
	}
	go synonymResolver.Run(ctx, cfg.SynonymRefreshInterval)

	parser := queryparser.New(lookupCache, synonymResolver)

	schedule := pricing.DefaultSchedule()
	paginatorService := paginator.New(db.Pool, cfg, schedule)
	aggregator := facets.New(db.Pool, cfg.FacetFanOutLimit, cfg.FacetCrossFilter)

	var accelerator *esaccel.Accelerator
	if cfg.ElasticsearchURL != "" {
		accelerator, err = esaccel.New(cfg.ElasticsearchURL)
		if err != nil {
			logger.Warn().Err(err).Msg("elasticsearch accelerator unavailable, falling back to postgres-only search")
			accelerator = nil
		}
	}

	h := handlers.New(cfg, redisCache, paginatorService, aggregator, parser, lookupCache, synonymResolver, accelerator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		AppName:      "catalog-search",
	})
	app.Use(recover.New())
	app.Use(logging.Middleware(logger))

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	h.RegisterRoutes(app)

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
