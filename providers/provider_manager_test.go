package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard.app/config"
	apperrors "finboard.app/errors"
	"finboard.app/models"
)

func TestNewManager(t *testing.T) {
	t.Run("WithoutMarketDataKey", func(t *testing.T) {
		manager := NewManager(&config.ProvidersConfig{
			TreasuryBaseURL:    "https://treasury.example.com",
			SentimentBaseURL:   "https://sentiment.example.com",
			MarketDataBaseURL:  "https://market.example.com",
			NewsBaseURL:        "https://market.example.com",
			PredictionsBaseURL: "https://predictions.example.com",
			RequestTimeout:     5 * time.Second,
		})

		assert.NotNil(t, manager.treasury)
		assert.NotNil(t, manager.sentiment)
		assert.NotNil(t, manager.predictions)
		assert.NotNil(t, manager.demo)
		assert.Nil(t, manager.market)
		assert.Nil(t, manager.news)
		assert.NotNil(t, manager.treasuryBreaker)
		assert.NotNil(t, manager.marketBreaker)
	})

	t.Run("WithMarketDataKey", func(t *testing.T) {
		manager := NewManager(&config.ProvidersConfig{
			MarketDataBaseURL: "https://market.example.com",
			NewsBaseURL:       "https://market.example.com",
			MarketDataAPIKey:  "test-api-key",
			RequestTimeout:    5 * time.Second,
		})

		assert.NotNil(t, manager.market)
		assert.NotNil(t, manager.news)
	})
}

func TestManagerServesLiveWhenHealthy(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"data": [{"record_date": "2026-08-20", "10_yr": "4.12"}]}`))
		require.NoError(t, err)
	}))
	defer mockServer.Close()

	manager := NewManager(&config.ProvidersConfig{
		TreasuryBaseURL: mockServer.URL,
		RequestTimeout:  5 * time.Second,
	})

	curve, err := manager.YieldCurve(context.Background())

	assert.NoError(t, err)
	require.NotNil(t, curve)
	assert.Equal(t, models.SourceLive, curve.Source)
	assert.Equal(t, "2026-08-20", curve.CurveDate)
}

func TestManagerFallsBackToDemo(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	manager := NewManager(&config.ProvidersConfig{
		TreasuryBaseURL:  mockServer.URL,
		SentimentBaseURL: mockServer.URL,
		RequestTimeout:   5 * time.Second,
	})

	curve, err := manager.YieldCurve(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, curve)
	assert.Equal(t, models.SourceFallback, curve.Source)
	assert.NotEmpty(t, curve.Points)

	sentiment, err := manager.Sentiment(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, sentiment)
	assert.Equal(t, models.SourceFallback, sentiment.Source)
}

func TestManagerSkipsMarketDataWithoutKey(t *testing.T) {
	// No API key: market data chains must go straight to demo without any
	// network call
	manager := NewManager(&config.ProvidersConfig{
		MarketDataBaseURL: "http://127.0.0.1:1",
		NewsBaseURL:       "http://127.0.0.1:1",
		RequestTimeout:    time.Second,
	})

	quote, err := manager.Quote(context.Background(), "SPY")
	assert.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, models.SourceFallback, quote.Source)
	assert.Equal(t, "SPY", quote.Symbol)

	volatility, err := manager.Volatility(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, volatility)
	assert.Equal(t, models.SourceFallback, volatility.Source)

	feed, err := manager.News(context.Background(), "markets")
	assert.NoError(t, err)
	require.NotNil(t, feed)
	assert.Equal(t, models.SourceFallback, feed.Source)
	assert.NotEmpty(t, feed.Items)
}

func TestManagerUnknownSymbolDoesNotServeDemo(t *testing.T) {
	manager := NewManager(&config.ProvidersConfig{
		RequestTimeout: time.Second,
	})

	quote, err := manager.Quote(context.Background(), "ZZZT")

	assert.Error(t, err)
	assert.Nil(t, quote)

	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
}

func TestManagerDemoCoversEveryPanel(t *testing.T) {
	// Closed server: every live fetch fails fast with connection refused
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mockServer.Close()

	manager := NewManager(&config.ProvidersConfig{
		TreasuryBaseURL:    mockServer.URL,
		SentimentBaseURL:   mockServer.URL,
		MarketDataBaseURL:  mockServer.URL,
		NewsBaseURL:        mockServer.URL,
		PredictionsBaseURL: mockServer.URL,
		MarketDataAPIKey:   "test-api-key",
		RequestTimeout:     time.Second,
	})

	ctx := context.Background()
	from := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	curve, err := manager.YieldCurve(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, curve.Source)

	sentiment, err := manager.Sentiment(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, sentiment.Source)

	volatility, err := manager.Volatility(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, volatility.Source)

	quote, err := manager.Quote(ctx, "QQQ")
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, quote.Source)

	feed, err := manager.News(ctx, "crypto")
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, feed.Source)

	calendar, err := manager.Earnings(ctx, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, calendar.Source)
	assert.NotEmpty(t, calendar.Events)

	board, err := manager.Predictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, board.Source)
	assert.NotEmpty(t, board.Markets)
}

func TestManagerNoProvidersConfigured(t *testing.T) {
	manager := &Manager{}

	curve, err := manager.YieldCurve(context.Background())

	assert.Error(t, err)
	assert.Nil(t, curve)

	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ExternalAPIError, appErr.Type)
	assert.Contains(t, appErr.Message, "no providers configured")
}

func TestManagerDemoEarningsRespectWindow(t *testing.T) {
	manager := NewManager(&config.ProvidersConfig{RequestTimeout: time.Second})

	from := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	calendar, err := manager.Earnings(context.Background(), from, from.AddDate(0, 0, 2))

	require.NoError(t, err)
	assert.Equal(t, "2026-08-21", calendar.From)
	assert.Equal(t, "2026-08-23", calendar.To)
	for _, event := range calendar.Events {
		assert.LessOrEqual(t, event.Date, "2026-08-23")
	}
}
