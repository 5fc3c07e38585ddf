package providers

import (
	"context"
	"time"

	"finboard.app/models"
)

// Source supplies every dashboard panel. Implementations decide where the
// data comes from; each payload carries its origin in the model's Source
// field.
type Source interface {
	YieldCurve(ctx context.Context) (*models.YieldCurve, error)
	Sentiment(ctx context.Context) (*models.SentimentIndex, error)
	Volatility(ctx context.Context) (*models.VolatilityIndex, error)
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	News(ctx context.Context, category string) (*models.NewsFeed, error)
	Earnings(ctx context.Context, from, to time.Time) (*models.EarningsCalendar, error)
	Predictions(ctx context.Context) (*models.PredictionBoard, error)
}
