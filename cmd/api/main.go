package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gel-tracker/internal/core/cache"
	"gel-tracker/internal/core/config"
	"gel-tracker/internal/core/httpclient"
	"gel-tracker/internal/core/logger"
	"gel-tracker/internal/core/metrics"
	"gel-tracker/internal/core/proxy"
	"gel-tracker/internal/core/server"
	trackingadapter "gel-tracker/internal/features/tracking/adapters"
	trackinghandler "gel-tracker/internal/features/tracking/handler"
	trackingservice "gel-tracker/internal/features/tracking/service"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix  = "gel:"
	probeTimeout    = 20 * time.Second
	shutdownTimeout = 30 * time.Second
)

// @title GEL Tracker API
// @version 1.0
// @description Looks up tracking codes on the Global Express Log unidentified-packages page.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("target_url", cfg.Scrape.TargetURL),
	)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	serverOpts := []server.Option{server.WithMetrics(m.Handler())}
	serviceOpts := []trackingservice.Option{
		trackingservice.WithObserver(m),
		trackingservice.WithLogger(logger.Named("scraper")),
	}

	// Result cache is optional
	if cfg.Cache.RedisURL != "" {
		redisAdapter, err := cache.NewRedisAdapter(cfg.Cache.RedisURL,
			cache.WithPrefix(cacheKeyPrefix),
			cache.WithTimeout(cfg.Cache.Timeout),
		)
		if err != nil {
			l.Fatal("Failed to init result cache", zap.Error(err))
		}
		defer redisAdapter.Close()

		if err := redisAdapter.Ping(context.Background()); err != nil {
			l.Warn("Result cache unreachable, lookups will not be cached until it recovers", zap.Error(err))
		} else {
			l.Info("Result cache connection verified")
		}

		serviceOpts = append(serviceOpts, trackingservice.WithCache(trackingadapter.NewResultCache(redisAdapter), cfg.Cache.TTL))
		serverOpts = append(serverOpts, server.WithHealthCheck("cache", redisAdapter.Ping))
	}

	proxySettings := proxy.FromConfig(cfg.Proxy)

	if cfg.Server.TargetCheckOnStart {
		checkTarget(cfg, proxySettings, l)
	}

	// Initialize Scraper
	resolver := trackingadapter.NewExecutableResolver(cfg.Browser)
	launcher := trackingadapter.NewRodLauncher(cfg.Browser, cfg.Scrape, proxySettings)
	scrapeSvc := trackingservice.NewScrapeService(cfg.Scrape, resolver, launcher, serviceOpts...)

	trackingHdl := trackinghandler.NewTrackingHandler(scrapeSvc)

	srv := server.New(cfg, serverOpts...)

	// Register Routes
	srv.App.Get("/api/gel", srv.RateLimit(), trackingHdl.Lookup)
	srv.App.Get("/tracking/:code", srv.RateLimit(), trackingHdl.GetTracking)

	go func() {
		if err := srv.Run(); err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	l.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// checkTarget fetches the target page once and logs what it found.
// Failures are logged only; the page may be reachable later.
func checkTarget(cfg *config.AppConfig, proxySettings proxy.Settings, l *zap.Logger) {
	client, err := httpclient.NewClient(probeTimeout, proxySettings.FullURL())
	if err != nil {
		l.Warn("Target check skipped", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	probe := trackingadapter.NewTargetProbe(client, cfg.Scrape.TargetURL, cfg.Scrape.UserAgent)
	report, err := probe.Check(ctx)
	if err != nil {
		l.Warn("Target check failed", zap.Error(err))
		return
	}

	l.Info("Target check passed",
		zap.Int("status", report.StatusCode),
		zap.Bool("has_search_form", report.HasSearchForm),
	)
}
