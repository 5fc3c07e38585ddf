package providers

import (
	"context"
	"time"

	"finboard.app/config"
	apperrors "finboard.app/errors"
	"finboard.app/metrics"
	"finboard.app/models"
)

// Provider names as they appear in logs and metric labels.
const (
	providerTreasury    = "treasury"
	providerSentiment   = "sentiment"
	providerMarketData  = "marketdata"
	providerNews        = "news"
	providerPredictions = "predictions"
	providerDemo        = "demo"
)

// Manager owns the live providers and the demo fallback and assembles the
// fallback chain each panel request runs through. It implements Source.
type Manager struct {
	treasury    *TreasuryProvider
	sentiment   *SentimentProvider
	market      *MarketDataProvider
	news        *NewsProvider
	predictions *PredictionsProvider
	demo        *DemoProvider

	treasuryBreaker    *Breaker
	sentimentBreaker   *Breaker
	marketBreaker      *Breaker
	newsBreaker        *Breaker
	predictionsBreaker *Breaker
}

func NewManager(config *config.ProvidersConfig) *Manager {
	manager := &Manager{
		treasury:    NewTreasuryProvider(config),
		sentiment:   NewSentimentProvider(config),
		predictions: NewPredictionsProvider(config),
		demo:        NewDemoProvider(),

		treasuryBreaker:    NewBreaker(providerTreasury),
		sentimentBreaker:   NewBreaker(providerSentiment),
		marketBreaker:      NewBreaker(providerMarketData),
		newsBreaker:        NewBreaker(providerNews),
		predictionsBreaker: NewBreaker(providerPredictions),
	}

	// Market data endpoints need an API key; without one those chains start
	// at the demo provider
	if config.MarketDataAPIKey != "" {
		manager.market = NewMarketDataProvider(config)
		manager.news = NewNewsProvider(config)
	}

	return manager
}

func (m *Manager) YieldCurve(ctx context.Context) (*models.YieldCurve, error) {
	builder := NewChainBuilder[*models.YieldCurve]()
	if m.treasury != nil {
		builder.AddHandler(NewBaseHandler(providerTreasury,
			Instrument(providerTreasury, metrics.OutcomeLive,
				Guard(m.treasuryBreaker, m.treasury.FetchYieldCurve))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, m.demo.FetchYieldCurve)))
	}
	return runChain(ctx, builder.Build(), "yield curve")
}

func (m *Manager) Sentiment(ctx context.Context) (*models.SentimentIndex, error) {
	builder := NewChainBuilder[*models.SentimentIndex]()
	if m.sentiment != nil {
		builder.AddHandler(NewBaseHandler(providerSentiment,
			Instrument(providerSentiment, metrics.OutcomeLive,
				Guard(m.sentimentBreaker, m.sentiment.FetchSentiment))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, m.demo.FetchSentiment)))
	}
	return runChain(ctx, builder.Build(), "sentiment")
}

func (m *Manager) Volatility(ctx context.Context) (*models.VolatilityIndex, error) {
	builder := NewChainBuilder[*models.VolatilityIndex]()
	if m.market != nil {
		builder.AddHandler(NewBaseHandler(providerMarketData,
			Instrument(providerMarketData, metrics.OutcomeLive,
				Guard(m.marketBreaker, m.market.FetchVolatility))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, m.demo.FetchVolatility)))
	}
	return runChain(ctx, builder.Build(), "volatility")
}

func (m *Manager) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	builder := NewChainBuilder[*models.Quote]()
	if m.market != nil {
		builder.AddHandler(NewBaseHandler(providerMarketData,
			Instrument(providerMarketData, metrics.OutcomeLive,
				Guard(m.marketBreaker, func(ctx context.Context) (*models.Quote, error) {
					return m.market.FetchQuote(ctx, symbol)
				}))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, func(ctx context.Context) (*models.Quote, error) {
				return m.demo.FetchQuote(ctx, symbol)
			})))
	}
	return runChain(ctx, builder.Build(), "quote")
}

func (m *Manager) News(ctx context.Context, category string) (*models.NewsFeed, error) {
	builder := NewChainBuilder[*models.NewsFeed]()
	if m.news != nil {
		builder.AddHandler(NewBaseHandler(providerNews,
			Instrument(providerNews, metrics.OutcomeLive,
				Guard(m.newsBreaker, func(ctx context.Context) (*models.NewsFeed, error) {
					return m.news.FetchNews(ctx, category)
				}))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, func(ctx context.Context) (*models.NewsFeed, error) {
				return m.demo.FetchNews(ctx, category)
			})))
	}
	return runChain(ctx, builder.Build(), "news")
}

func (m *Manager) Earnings(ctx context.Context, from, to time.Time) (*models.EarningsCalendar, error) {
	builder := NewChainBuilder[*models.EarningsCalendar]()
	if m.market != nil {
		builder.AddHandler(NewBaseHandler(providerMarketData,
			Instrument(providerMarketData, metrics.OutcomeLive,
				Guard(m.marketBreaker, func(ctx context.Context) (*models.EarningsCalendar, error) {
					return m.market.FetchEarnings(ctx, from, to)
				}))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, func(ctx context.Context) (*models.EarningsCalendar, error) {
				return m.demo.FetchEarnings(ctx, from, to)
			})))
	}
	return runChain(ctx, builder.Build(), "earnings")
}

func (m *Manager) Predictions(ctx context.Context) (*models.PredictionBoard, error) {
	builder := NewChainBuilder[*models.PredictionBoard]()
	if m.predictions != nil {
		builder.AddHandler(NewBaseHandler(providerPredictions,
			Instrument(providerPredictions, metrics.OutcomeLive,
				Guard(m.predictionsBreaker, m.predictions.FetchPredictions))))
	}
	if m.demo != nil {
		builder.AddHandler(NewBaseHandler(providerDemo,
			Instrument(providerDemo, metrics.OutcomeFallback, m.demo.FetchPredictions)))
	}
	return runChain(ctx, builder.Build(), "predictions")
}

func runChain[T any](ctx context.Context, chain PanelHandler[T], panel string) (T, error) {
	if chain == nil {
		var zero T
		return zero, apperrors.NewExternalAPIError("no providers configured for "+panel+" panel", nil)
	}
	return chain.Handle(ctx)
}
