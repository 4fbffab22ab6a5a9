package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ecommerce-dashboard/internal/basemap"
	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/middleware"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/presentation"
	"ecommerce-dashboard/internal/server"
	"ecommerce-dashboard/internal/services"
	"ecommerce-dashboard/internal/ui/templates"
)

const basemapRoute = "/basemap"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, deps, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("dashboard stopped", "stats", deps.Analytics.Stats())
		return nil
	})

	return gracefulServer.Run(ctx)
}

// buildDependencies runs the whole pipeline once: load, aggregate, fetch the
// basemap and build the sections. Only the basemap is allowed to fail.
func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (server.Dependencies, error) {
	weighting, err := services.ParseWeighting(cfg.Dashboard.ReviewWeights)
	if err != nil {
		return server.Dependencies{}, err
	}

	orders, geo, err := loadTables(ctx, cfg.Data, logger)
	if err != nil {
		return server.Dependencies{}, err
	}

	analytics, err := services.NewAnalytics(ctx, orders, geo, services.Options{
		Weighting: weighting,
		Logger:    logger,
	})
	if err != nil {
		return server.Dependencies{}, fmt.Errorf("build analytics: %w", err)
	}

	image := fetchBasemap(ctx, cfg.Dashboard, logger)
	var background *presentation.Basemap
	if image != nil {
		background = &presentation.Basemap{URL: basemapRoute, Extent: presentation.BrazilExtent}
	}

	sections := presentation.BuildSections(analytics.Report(), background)

	return server.Dependencies{
		Analytics: analytics,
		Catalog:   presentation.NewCatalog(sections),
		Basemap:   image,
		Page: templates.Page{
			Title:    cfg.Dashboard.Title,
			LogoURL:  cfg.Dashboard.LogoURL,
			Caption:  cfg.Dashboard.Caption,
			Sections: sections,
		},
		Registry: observability.InitRegistry(),
	}, nil
}

// loadTables reads both CSV files concurrently under the configured timeout.
func loadTables(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (*dataset.OrderTable, *dataset.GeoTable, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()

	var (
		orders *dataset.OrderTable
		geo    *dataset.GeoTable
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stageStart := time.Now()
		orders, err = dataset.LoadOrders(gctx, cfg.OrdersFile)
		observability.ObserveStage("load_orders", err, time.Since(stageStart))
		return err
	})
	g.Go(func() (err error) {
		stageStart := time.Now()
		geo, err = dataset.LoadGeo(gctx, cfg.GeoFile)
		observability.ObserveStage("load_geolocation", err, time.Since(stageStart))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load data: %w", err)
	}

	observability.SetDatasetRows("orders", orders.Len())
	observability.SetDatasetRows("geolocation", geo.Len())

	logger.Info("CSV data loaded successfully",
		"orders", orders.Len(),
		"geolocation", geo.Len(),
		"duration", time.Since(start),
	)
	return orders, geo, nil
}

// fetchBasemap returns nil when the image cannot be fetched; the dashboard
// then draws the scatter without a background.
func fetchBasemap(ctx context.Context, cfg config.DashboardConfig, logger *slog.Logger) *basemap.Image {
	if cfg.BasemapURL == "" {
		return nil
	}

	client := &http.Client{Timeout: cfg.BasemapTimeout}
	image, err := basemap.Fetch(ctx, client, cfg.BasemapURL)
	if err != nil {
		logger.Warn("basemap unavailable, plotting without background",
			"url", cfg.BasemapURL,
			"error", err,
		)
		return nil
	}

	logger.Info("basemap fetched",
		"bytes", len(image.Data),
		"content_type", image.ContentType,
	)
	return image
}

func newHandler(cfg *config.Config, deps server.Dependencies, logger *slog.Logger) http.Handler {
	srv := server.NewServer(deps, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Metrics(),
	)

	return middlewareChain(srv)
}
