package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finboard.app/cache"
	"finboard.app/config"
	apperrors "finboard.app/errors"
	"finboard.app/models"
	"finboard.app/providers"
)

// Mock panel source for testing - implements providers.Source
type mockSource struct {
	mock.Mock
}

func (m *mockSource) YieldCurve(_ context.Context) (*models.YieldCurve, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YieldCurve), nil
}

func (m *mockSource) Sentiment(_ context.Context) (*models.SentimentIndex, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SentimentIndex), nil
}

func (m *mockSource) Volatility(_ context.Context) (*models.VolatilityIndex, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolatilityIndex), nil
}

func (m *mockSource) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	args := m.Called(symbol)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), nil
}

func (m *mockSource) News(_ context.Context, category string) (*models.NewsFeed, error) {
	args := m.Called(category)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewsFeed), nil
}

func (m *mockSource) Earnings(_ context.Context, _, _ time.Time) (*models.EarningsCalendar, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EarningsCalendar), nil
}

func (m *mockSource) Predictions(_ context.Context) (*models.PredictionBoard, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionBoard), nil
}

// Ensure mock implements the interface
var _ providers.Source = (*mockSource)(nil)

type serviceClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *serviceClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *serviceClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			TTL: config.TTLConfig{
				Yields:      24 * time.Hour,
				Sentiment:   time.Hour,
				Volatility:  30 * time.Minute,
				Quotes:      5 * time.Minute,
				News:        15 * time.Minute,
				Earnings:    6 * time.Hour,
				Predictions: 30 * time.Minute,
			},
		},
		Providers: config.ProvidersConfig{
			Symbols: []string{"SPY", "QQQ"},
		},
	}
}

func newTestService(source providers.Source) (*DashboardService, *cache.Cache, *serviceClock) {
	c := cache.New(cache.NewMemoryStore(), "testns")
	svc := NewDashboardService(c, source, testConfig())

	clock := &serviceClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	svc.now = clock.Now

	return svc, c, clock
}

func TestDashboardService_CacheAside(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	expected := &models.SentimentIndex{Value: 39, Classification: "Fear", Source: models.SourceLive}
	source.On("Sentiment").Return(expected, nil).Once()

	first, err := svc.Sentiment(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 39, first.Value)

	// Second read is a cache hit; the provider must not be called again
	second, err := svc.Sentiment(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	source.AssertExpectations(t)
}

func TestDashboardService_ForceRefreshBypassesCache(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	expected := &models.VolatilityIndex{Level: 98.4, Change: -1.25, Source: models.SourceLive}
	source.On("Volatility").Return(expected, nil).Times(3)

	_, err := svc.Volatility(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)

	// Force refresh goes back to the provider even though the entry is fresh
	_, err = svc.Volatility(context.Background(), cache.FetchOptions{ForceRefresh: true})
	require.NoError(t, err)
	_, err = svc.Volatility(context.Background(), cache.FetchOptions{ForceRefresh: true})
	require.NoError(t, err)

	source.AssertExpectations(t)
}

func TestDashboardService_QuoteUppercasesSymbol(t *testing.T) {
	source := new(mockSource)
	svc, c, _ := newTestService(source)

	expected := &models.Quote{Symbol: "SPY", Price: 512.36, Source: models.SourceLive}
	source.On("Quote", "SPY").Return(expected, nil).Once()

	quote, err := svc.Quote(context.Background(), "spy", cache.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, "SPY", quote.Symbol)
	assert.True(t, c.IsValid(context.Background(), cache.QuoteKey("SPY")))
	source.AssertExpectations(t)
}

func TestDashboardService_QuoteEmptySymbol(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	quote, err := svc.Quote(context.Background(), "", cache.FetchOptions{})

	assert.Error(t, err)
	assert.Nil(t, quote)

	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ValidationError, appErr.Type)
	source.AssertNotCalled(t, "Quote", mock.Anything)
}

func TestDashboardService_NewsDefaultCategory(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	expected := &models.NewsFeed{Category: "markets", Source: models.SourceLive}
	source.On("News", "markets").Return(expected, nil).Once()

	feed, err := svc.News(context.Background(), "", cache.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, "markets", feed.Category)
	source.AssertExpectations(t)
}

func TestDashboardService_ProducerErrorNotCached(t *testing.T) {
	source := new(mockSource)
	svc, c, _ := newTestService(source)

	upstreamErr := apperrors.NewExternalAPIError("upstream down", nil)
	source.On("Predictions").Return(nil, upstreamErr).Twice()

	board, err := svc.Predictions(context.Background(), cache.FetchOptions{})
	assert.Nil(t, board)
	assert.Equal(t, upstreamErr, err)
	assert.False(t, c.IsValid(context.Background(), cache.PredictionsKey()))

	// The error was not cached either; the next read retries the provider
	_, err = svc.Predictions(context.Background(), cache.FetchOptions{})
	assert.Equal(t, upstreamErr, err)

	source.AssertExpectations(t)
}

func TestDashboardService_YieldCurveDayRollover(t *testing.T) {
	source := new(mockSource)
	svc, _, clock := newTestService(source)

	// TTL far longer than a day: only the date-embedded key forces the miss
	svc.ttl.Yields = 48 * time.Hour

	expected := &models.YieldCurve{CurveDate: "2026-03-14", Source: models.SourceLive}
	source.On("YieldCurve").Return(expected, nil).Twice()

	_, err := svc.YieldCurve(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)

	// Same day: cache hit
	_, err = svc.YieldCurve(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)

	// Next day: new key, so the provider is consulted again
	clock.Advance(25 * time.Hour)
	_, err = svc.YieldCurve(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)

	source.AssertExpectations(t)
}

func TestDashboardService_SnapshotToleratesPanelFailures(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	source.On("YieldCurve").Return(nil, apperrors.NewExternalAPIError("treasury down", nil))
	source.On("Sentiment").Return(&models.SentimentIndex{Value: 38, Classification: "Fear", Source: models.SourceFallback}, nil)
	source.On("Volatility").Return(&models.VolatilityIndex{Level: 98.4, Source: models.SourceLive}, nil)
	source.On("Quote", "SPY").Return(&models.Quote{Symbol: "SPY", Price: 512.36, Source: models.SourceLive}, nil)
	source.On("Quote", "QQQ").Return(nil, apperrors.NewExternalAPIError("vendor down", nil))
	source.On("News", "markets").Return(&models.NewsFeed{Category: "markets", Source: models.SourceLive}, nil)
	source.On("Earnings").Return(&models.EarningsCalendar{Source: models.SourceLive}, nil)
	source.On("Predictions").Return(&models.PredictionBoard{Source: models.SourceLive}, nil)

	snapshot, err := svc.Snapshot(context.Background(), nil, cache.FetchOptions{})

	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Nil(t, snapshot.Yields)
	assert.NotNil(t, snapshot.Sentiment)
	assert.NotNil(t, snapshot.Volatility)
	assert.NotNil(t, snapshot.News)
	assert.NotNil(t, snapshot.Earnings)
	assert.NotNil(t, snapshot.Predictions)
	assert.False(t, snapshot.GeneratedAt.IsZero())

	// Only the healthy symbol made it into the quotes panel
	require.Len(t, snapshot.Quotes, 1)
	assert.Equal(t, "SPY", snapshot.Quotes[0].Symbol)
}

func TestDashboardService_SnapshotUsesRequestedSymbols(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	source.On("YieldCurve").Return(&models.YieldCurve{Source: models.SourceLive}, nil)
	source.On("Sentiment").Return(&models.SentimentIndex{Source: models.SourceLive}, nil)
	source.On("Volatility").Return(&models.VolatilityIndex{Source: models.SourceLive}, nil)
	source.On("Quote", "TLT").Return(&models.Quote{Symbol: "TLT", Price: 94.62, Source: models.SourceLive}, nil)
	source.On("News", "markets").Return(&models.NewsFeed{Category: "markets", Source: models.SourceLive}, nil)
	source.On("Earnings").Return(&models.EarningsCalendar{Source: models.SourceLive}, nil)
	source.On("Predictions").Return(&models.PredictionBoard{Source: models.SourceLive}, nil)

	snapshot, err := svc.Snapshot(context.Background(), []string{"TLT"}, cache.FetchOptions{})

	require.NoError(t, err)
	require.Len(t, snapshot.Quotes, 1)
	assert.Equal(t, "TLT", snapshot.Quotes[0].Symbol)
	source.AssertNotCalled(t, "Quote", "SPY")
}

func TestDashboardService_TrackedSymbols(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	symbols := svc.TrackedSymbols()
	assert.Equal(t, []string{"SPY", "QQQ"}, symbols)

	// Mutating the returned slice must not affect the service
	symbols[0] = "IWM"
	assert.Equal(t, []string{"SPY", "QQQ"}, svc.TrackedSymbols())
}

func TestDashboardService_CacheAdmin(t *testing.T) {
	source := new(mockSource)
	svc, _, _ := newTestService(source)

	source.On("Sentiment").Return(&models.SentimentIndex{Value: 38, Source: models.SourceLive}, nil).Once()
	source.On("Volatility").Return(&models.VolatilityIndex{Level: 98.4, Source: models.SourceLive}, nil).Once()

	_, err := svc.Sentiment(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)
	_, err = svc.Volatility(context.Background(), cache.FetchOptions{})
	require.NoError(t, err)

	stats := svc.CacheStats(context.Background())
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.ValidEntries)

	svc.InvalidateKey(context.Background(), cache.SentimentKey())
	stats = svc.CacheStats(context.Background())
	assert.Equal(t, 1, stats.TotalEntries)

	removed := svc.ClearCache(context.Background())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, svc.CacheStats(context.Background()).TotalEntries)
}
