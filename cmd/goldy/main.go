package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goldyhq/goldy/internal/api"
	"github.com/goldyhq/goldy/internal/browser"
	"github.com/goldyhq/goldy/internal/config"
	"github.com/goldyhq/goldy/internal/database"
	"github.com/goldyhq/goldy/internal/events"
	"github.com/goldyhq/goldy/internal/pricing"
	"github.com/goldyhq/goldy/internal/ratelimit"
	"github.com/goldyhq/goldy/internal/scheduler"
	"github.com/goldyhq/goldy/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	if cfg.Browser.UserAgent != "" {
		browserOpts.UserAgent = cfg.Browser.UserAgent
	}
	browserOpts.ViewportWidth = cfg.Browser.ViewportWidth
	browserOpts.ViewportHeight = cfg.Browser.ViewportHeight

	b, err := browser.New(browserOpts)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// Repositories. Price writes publish PRICE_RECORDED through the
	// transactional outbox; the relay moves those to the Redis stream.
	publisher := events.NewPublisher(db, logger)
	assets := database.NewAssetRepository(db)
	dealers := database.NewDealerRepository(db)
	listings := database.NewListingRepository(db)
	prices := database.NewPriceRepository(db, publisher)

	relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
		PollInterval: cfg.Relay.PollInterval,
		BatchSize:    cfg.Relay.BatchSize,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("relay stopped with error", "error", err)
		}
	}()

	// Scraping engine.
	fetcher := scraper.NewPlaywrightFetcher(b, cfg.Browser.NavTimeout, cfg.Browser.SelectorTimeout, logger)
	extractor := scraper.NewExtractor()
	registry := scraper.NewRegistry(
		scraper.NewAPMEXStrategy(fetcher, extractor, logger),
		scraper.NewJMBullionStrategy(fetcher, extractor, logger),
	)
	limiter := ratelimit.NewFixedDelayLimiter(cfg.Scraper.RequestDelay)
	orchestrator := scraper.NewOrchestrator(listings, prices, registry, limiter, logger)

	sched := scheduler.New(orchestrator, cfg.Scraper.Interval, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("scheduler stopped with error", "error", err)
		}
	}()

	analyzer := pricing.NewAnalyzer(prices)
	handlers := api.NewHandlers(sched, assets, dealers, listings, prices, analyzer, relay, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
