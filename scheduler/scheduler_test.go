package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finboard.app/cache"
	"finboard.app/config"
	"finboard.app/models"
	"finboard.app/service"
)

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) YieldCurve(_ context.Context, opts cache.FetchOptions) (*models.YieldCurve, error) {
	args := m.Called(opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.YieldCurve), nil
}

func (m *mockDashboardService) Sentiment(_ context.Context, opts cache.FetchOptions) (*models.SentimentIndex, error) {
	args := m.Called(opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SentimentIndex), nil
}

func (m *mockDashboardService) Volatility(_ context.Context, opts cache.FetchOptions) (*models.VolatilityIndex, error) {
	args := m.Called(opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolatilityIndex), nil
}

func (m *mockDashboardService) Quote(_ context.Context, symbol string, opts cache.FetchOptions) (*models.Quote, error) {
	args := m.Called(symbol, opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), nil
}

func (m *mockDashboardService) News(_ context.Context, category string, opts cache.FetchOptions) (*models.NewsFeed, error) {
	args := m.Called(category, opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewsFeed), nil
}

func (m *mockDashboardService) Earnings(_ context.Context, opts cache.FetchOptions) (*models.EarningsCalendar, error) {
	args := m.Called(opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EarningsCalendar), nil
}

func (m *mockDashboardService) Predictions(_ context.Context, opts cache.FetchOptions) (*models.PredictionBoard, error) {
	args := m.Called(opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionBoard), nil
}

func (m *mockDashboardService) Snapshot(_ context.Context, symbols []string, opts cache.FetchOptions) (*models.DashboardSnapshot, error) {
	args := m.Called(symbols, opts)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSnapshot), nil
}

func (m *mockDashboardService) TrackedSymbols() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *mockDashboardService) CacheStats(_ context.Context) cache.Stats {
	args := m.Called()
	return args.Get(0).(cache.Stats)
}

func (m *mockDashboardService) ClearCache(_ context.Context) int {
	args := m.Called()
	return args.Int(0)
}

func (m *mockDashboardService) InvalidateKey(_ context.Context, key string) {
	m.Called(key)
}

var _ service.DashboardServiceInterface = (*mockDashboardService)(nil)

func forcedRefresh(opts cache.FetchOptions) bool {
	return opts.ForceRefresh
}

func TestSchedulerFastLaneForcesRefresh(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("TrackedSymbols").Return([]string{"SPY", "QQQ"})
	svc.On("Quote", "SPY", mock.MatchedBy(forcedRefresh)).Return(&models.Quote{Symbol: "SPY"}, nil).Once()
	svc.On("Quote", "QQQ", mock.MatchedBy(forcedRefresh)).Return(&models.Quote{Symbol: "QQQ"}, nil).Once()
	svc.On("Volatility", mock.MatchedBy(forcedRefresh)).Return(&models.VolatilityIndex{}, nil).Once()

	s := NewScheduler(svc, &config.Config{})
	s.refreshFastLane()

	svc.AssertExpectations(t)
}

func TestSchedulerFastLaneContinuesAfterFailure(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("TrackedSymbols").Return([]string{"SPY", "QQQ"})
	svc.On("Quote", "SPY", mock.Anything).Return(nil, assert.AnError).Once()
	svc.On("Quote", "QQQ", mock.Anything).Return(&models.Quote{Symbol: "QQQ"}, nil).Once()
	svc.On("Volatility", mock.Anything).Return(&models.VolatilityIndex{}, nil).Once()

	s := NewScheduler(svc, &config.Config{})
	s.refreshFastLane()

	svc.AssertExpectations(t)
}

func TestSchedulerMediumLaneForcesRefresh(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Sentiment", mock.MatchedBy(forcedRefresh)).Return(&models.SentimentIndex{}, nil).Once()
	svc.On("News", "", mock.MatchedBy(forcedRefresh)).Return(&models.NewsFeed{}, nil).Once()
	svc.On("Predictions", mock.MatchedBy(forcedRefresh)).Return(&models.PredictionBoard{}, nil).Once()

	s := NewScheduler(svc, &config.Config{})
	s.refreshMediumLane()

	svc.AssertExpectations(t)
}

func TestSchedulerSlowLaneForcesRefresh(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("YieldCurve", mock.MatchedBy(forcedRefresh)).Return(&models.YieldCurve{}, nil).Once()
	svc.On("Earnings", mock.MatchedBy(forcedRefresh)).Return(&models.EarningsCalendar{}, nil).Once()

	s := NewScheduler(svc, &config.Config{})
	s.refreshSlowLane()

	svc.AssertExpectations(t)
}

func TestSchedulerDisabled(t *testing.T) {
	svc := new(mockDashboardService)

	cfg := &config.Config{}
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.FastInterval = time.Millisecond

	s := NewScheduler(svc, cfg)
	s.Start()

	svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "YieldCurve", mock.Anything)
}

func TestSchedulerNonPositiveIntervalSkipsLane(t *testing.T) {
	s := NewScheduler(new(mockDashboardService), &config.Config{})

	calls := 0
	s.scheduleInterval(0, func() { calls++ })

	assert.Equal(t, 0, calls)
}

func TestSchedulerStopTerminatesLoop(t *testing.T) {
	s := NewScheduler(new(mockDashboardService), &config.Config{})

	fired := make(chan struct{}, 64)
	done := make(chan struct{})
	go func() {
		s.scheduleInterval(time.Millisecond, func() { fired <- struct{}{} })
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("refresh job did not fire")
		}
	}

	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler loop did not stop")
	}
}
