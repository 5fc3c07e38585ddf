package service

import (
	"context"

	"finboard.app/cache"
	"finboard.app/models"
)

// PanelServiceInterface defines the interface for single-panel reads
type PanelServiceInterface interface {
	YieldCurve(ctx context.Context, opts cache.FetchOptions) (*models.YieldCurve, error)
	Sentiment(ctx context.Context, opts cache.FetchOptions) (*models.SentimentIndex, error)
	Volatility(ctx context.Context, opts cache.FetchOptions) (*models.VolatilityIndex, error)
	Quote(ctx context.Context, symbol string, opts cache.FetchOptions) (*models.Quote, error)
	News(ctx context.Context, category string, opts cache.FetchOptions) (*models.NewsFeed, error)
	Earnings(ctx context.Context, opts cache.FetchOptions) (*models.EarningsCalendar, error)
	Predictions(ctx context.Context, opts cache.FetchOptions) (*models.PredictionBoard, error)
}

// SnapshotServiceInterface assembles the whole dashboard in one call
type SnapshotServiceInterface interface {
	Snapshot(ctx context.Context, symbols []string, opts cache.FetchOptions) (*models.DashboardSnapshot, error)
	TrackedSymbols() []string
}

// CacheAdminInterface exposes cache maintenance operations
type CacheAdminInterface interface {
	CacheStats(ctx context.Context) cache.Stats
	ClearCache(ctx context.Context) int
	InvalidateKey(ctx context.Context, key string)
}

// DashboardServiceInterface is the combined surface consumed by the HTTP
// layer and the refresh scheduler
type DashboardServiceInterface interface {
	PanelServiceInterface
	SnapshotServiceInterface
	CacheAdminInterface
}

// Ensure implementations satisfy interfaces
var _ DashboardServiceInterface = (*DashboardService)(nil)
