// Package scheduler fires batch scrapes on a fixed interval and on demand,
// and guarantees that only one batch run is active at a time.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/goldyhq/goldy/internal/models"
)

// ErrAlreadyRunning is returned to a manual trigger that collides with an
// in-progress batch run.
var ErrAlreadyRunning = errors.New("scraping is already in progress")

// Runner is the orchestrator surface the scheduler drives.
type Runner interface {
	ScrapeAll(ctx context.Context) (models.BatchResult, error)
	ScrapeOne(ctx context.Context, listingID string) (bool, error)
}

// Status is a point-in-time read of the run guard.
type Status struct {
	IsRunning bool `json:"is_running"`
}

// Scheduler owns the run guard. Acquisition is a single compare-and-swap so
// a timer fire and a manual trigger can never both believe they hold the
// run. The guard is always released when a run returns, even on error.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	running  atomic.Bool
	logger   *slog.Logger
}

func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start runs the interval loop until ctx is cancelled. A tick that lands
// while a run is active is skipped; there is no queueing or catch-up.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("scraping already in progress, skipping scheduled run")
		return
	}
	defer s.running.Store(false)

	s.logger.Info("starting scheduled price scraping")

	result, err := s.runner.ScrapeAll(ctx)
	if err != nil {
		// Timer-driven failures are logged, never propagated.
		s.logger.Error("scheduled scraping failed", "error", err)
		return
	}

	s.logger.Info("scheduled scraping completed",
		"success", result.Success,
		"failed", result.Failed)
}

// TriggerBatch starts a batch run on demand. It fails fast with
// ErrAlreadyRunning when a run is active instead of queueing behind it.
func (s *Scheduler) TriggerBatch(ctx context.Context) (models.BatchResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return models.BatchResult{}, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.logger.Info("starting manual price scraping")

	result, err := s.runner.ScrapeAll(ctx)
	if err != nil {
		return models.BatchResult{}, err
	}

	s.logger.Info("manual scraping completed",
		"success", result.Success,
		"failed", result.Failed)

	return result, nil
}

// TriggerListing scrapes a single listing on demand. It deliberately does
// not touch the run guard: a spot check stays responsive even while a long
// batch holds the guard.
func (s *Scheduler) TriggerListing(ctx context.Context, listingID string) (bool, error) {
	s.logger.Info("starting manual scraping for listing", "listing_id", listingID)

	ok, err := s.runner.ScrapeOne(ctx, listingID)
	if err != nil {
		s.logger.Error("manual listing scraping failed", "listing_id", listingID, "error", err)
		return false, err
	}

	s.logger.Info("manual listing scraping completed", "listing_id", listingID, "success", ok)

	return ok, nil
}

// Status reports whether a batch run currently holds the guard.
func (s *Scheduler) Status() Status {
	return Status{IsRunning: s.running.Load()}
}
