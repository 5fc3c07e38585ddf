// Package scheduler implements background cache re-warming
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"finboard.app/cache"
	"finboard.app/config"
	"finboard.app/service"
)

// jobTimeout bounds a single lane run across all of its panels.
const jobTimeout = 2 * time.Minute

// Scheduler refreshes dashboard panels ahead of their TTL expiry so
// interactive reads keep hitting warm entries. Panels are grouped into
// lanes by how quickly their data goes stale.
type Scheduler struct {
	config  *config.Config
	service service.DashboardServiceInterface
	stop    chan struct{}
}

// NewScheduler creates and configures a new refresh scheduler
func NewScheduler(svc service.DashboardServiceInterface, config *config.Config) *Scheduler {
	return &Scheduler{
		config:  config,
		service: svc,
		stop:    make(chan struct{}),
	}
}

// Start begins the scheduler's operations
func (s *Scheduler) Start() {
	if !s.config.Scheduler.Enabled {
		slog.Info("refresh scheduler disabled")
		return
	}

	go s.scheduleInterval(s.config.Scheduler.FastInterval, s.refreshFastLane)
	go s.scheduleInterval(s.config.Scheduler.MediumInterval, s.refreshMediumLane)
	go s.scheduleInterval(s.config.Scheduler.SlowInterval, s.refreshSlowLane)
}

// Stop halts all refresh loops. Runs already in flight finish normally.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) scheduleInterval(interval time.Duration, job func()) {
	if interval <= 0 {
		slog.Warn("refresh lane disabled by non-positive interval", "interval", interval)
		return
	}

	job()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) refreshFastLane() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	opts := cache.FetchOptions{ForceRefresh: true}
	for _, symbol := range s.service.TrackedSymbols() {
		if _, err := s.service.Quote(ctx, symbol, opts); err != nil {
			slog.Error("scheduled quote refresh failed", "symbol", symbol, "error", err)
		}
	}
	if _, err := s.service.Volatility(ctx, opts); err != nil {
		slog.Error("scheduled volatility refresh failed", "error", err)
	}
}

func (s *Scheduler) refreshMediumLane() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	opts := cache.FetchOptions{ForceRefresh: true}
	if _, err := s.service.Sentiment(ctx, opts); err != nil {
		slog.Error("scheduled sentiment refresh failed", "error", err)
	}
	if _, err := s.service.News(ctx, "", opts); err != nil {
		slog.Error("scheduled news refresh failed", "error", err)
	}
	if _, err := s.service.Predictions(ctx, opts); err != nil {
		slog.Error("scheduled predictions refresh failed", "error", err)
	}
}

func (s *Scheduler) refreshSlowLane() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	opts := cache.FetchOptions{ForceRefresh: true}
	if _, err := s.service.YieldCurve(ctx, opts); err != nil {
		slog.Error("scheduled yield curve refresh failed", "error", err)
	}
	if _, err := s.service.Earnings(ctx, opts); err != nil {
		slog.Error("scheduled earnings refresh failed", "error", err)
	}
}
