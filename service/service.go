package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard.app/cache"
	"finboard.app/config"
	"finboard.app/errors"
	"finboard.app/models"
	"finboard.app/providers"
)

// defaultNewsCategory is served when the caller does not pick one.
const defaultNewsCategory = "markets"

// earningsWindowDays is how far ahead the earnings calendar looks.
const earningsWindowDays = 7

// DashboardService orchestrates cache-aside reads for every panel: key
// construction, TTL policy, force refresh, and the concurrent
// whole-dashboard snapshot.
type DashboardService struct {
	cache     *cache.Cache
	providers providers.Source
	ttl       config.TTLConfig
	symbols   []string

	now func() time.Time
}

// NewDashboardService creates a new dashboard service over the given cache
// and provider source
func NewDashboardService(c *cache.Cache, source providers.Source, cfg *config.Config) *DashboardService {
	return &DashboardService{
		cache:     c,
		providers: source,
		ttl:       cfg.Cache.TTL,
		symbols:   cfg.Providers.Symbols,
		now:       time.Now,
	}
}

// TrackedSymbols returns the configured watchlist.
func (s *DashboardService) TrackedSymbols() []string {
	symbols := make([]string, len(s.symbols))
	copy(symbols, s.symbols)
	return symbols
}

// YieldCurve returns the treasury yield curve panel. The key embeds the
// calendar date, so a day rollover misses regardless of remaining TTL.
func (s *DashboardService) YieldCurve(ctx context.Context, opts cache.FetchOptions) (*models.YieldCurve, error) {
	key := cache.YieldCurveKey(s.now())
	return cache.Fetch(ctx, s.cache, key, s.ttl.Yields, opts, func(ctx context.Context) (*models.YieldCurve, error) {
		return s.providers.YieldCurve(ctx)
	})
}

// Sentiment returns the fear and greed panel.
func (s *DashboardService) Sentiment(ctx context.Context, opts cache.FetchOptions) (*models.SentimentIndex, error) {
	return cache.Fetch(ctx, s.cache, cache.SentimentKey(), s.ttl.Sentiment, opts, func(ctx context.Context) (*models.SentimentIndex, error) {
		return s.providers.Sentiment(ctx)
	})
}

// Volatility returns the bond volatility panel.
func (s *DashboardService) Volatility(ctx context.Context, opts cache.FetchOptions) (*models.VolatilityIndex, error) {
	return cache.Fetch(ctx, s.cache, cache.VolatilityKey(), s.ttl.Volatility, opts, func(ctx context.Context) (*models.VolatilityIndex, error) {
		return s.providers.Volatility(ctx)
	})
}

// Quote returns the quote panel for one symbol.
func (s *DashboardService) Quote(ctx context.Context, symbol string, opts cache.FetchOptions) (*models.Quote, error) {
	if symbol == "" {
		return nil, errors.NewValidationError("symbol cannot be empty")
	}
	symbol = strings.ToUpper(symbol)

	return cache.Fetch(ctx, s.cache, cache.QuoteKey(symbol), s.ttl.Quotes, opts, func(ctx context.Context) (*models.Quote, error) {
		return s.providers.Quote(ctx, symbol)
	})
}

// News returns the headline panel for one category.
func (s *DashboardService) News(ctx context.Context, category string, opts cache.FetchOptions) (*models.NewsFeed, error) {
	if category == "" {
		category = defaultNewsCategory
	}

	return cache.Fetch(ctx, s.cache, cache.NewsKey(category), s.ttl.News, opts, func(ctx context.Context) (*models.NewsFeed, error) {
		return s.providers.News(ctx, category)
	})
}

// Earnings returns the earnings calendar panel for the upcoming window.
// The key embeds the window start date.
func (s *DashboardService) Earnings(ctx context.Context, opts cache.FetchOptions) (*models.EarningsCalendar, error) {
	from := s.now()
	to := from.AddDate(0, 0, earningsWindowDays)

	return cache.Fetch(ctx, s.cache, cache.EarningsKey(from), s.ttl.Earnings, opts, func(ctx context.Context) (*models.EarningsCalendar, error) {
		return s.providers.Earnings(ctx, from, to)
	})
}

// Predictions returns the prediction markets panel.
func (s *DashboardService) Predictions(ctx context.Context, opts cache.FetchOptions) (*models.PredictionBoard, error) {
	return cache.Fetch(ctx, s.cache, cache.PredictionsKey(), s.ttl.Predictions, opts, func(ctx context.Context) (*models.PredictionBoard, error) {
		return s.providers.Predictions(ctx)
	})
}

// Snapshot assembles every panel concurrently. A failed panel is left nil
// in the snapshot instead of failing the whole dashboard; each goroutine
// writes a distinct snapshot field.
func (s *DashboardService) Snapshot(ctx context.Context, symbols []string, opts cache.FetchOptions) (*models.DashboardSnapshot, error) {
	if len(symbols) == 0 {
		symbols = s.symbols
	}

	snapshot := &models.DashboardSnapshot{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		curve, err := s.YieldCurve(groupCtx, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "yields", "error", err)
			return nil
		}
		snapshot.Yields = curve
		return nil
	})

	group.Go(func() error {
		sentiment, err := s.Sentiment(groupCtx, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "sentiment", "error", err)
			return nil
		}
		snapshot.Sentiment = sentiment
		return nil
	})

	group.Go(func() error {
		volatility, err := s.Volatility(groupCtx, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "volatility", "error", err)
			return nil
		}
		snapshot.Volatility = volatility
		return nil
	})

	group.Go(func() error {
		quotes := make([]models.Quote, 0, len(symbols))
		for _, symbol := range symbols {
			quote, err := s.Quote(groupCtx, symbol, opts)
			if err != nil {
				slog.Warn("snapshot panel unavailable", "panel", "quotes", "symbol", symbol, "error", err)
				continue
			}
			quotes = append(quotes, *quote)
		}
		snapshot.Quotes = quotes
		return nil
	})

	group.Go(func() error {
		feed, err := s.News(groupCtx, defaultNewsCategory, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "news", "error", err)
			return nil
		}
		snapshot.News = feed
		return nil
	})

	group.Go(func() error {
		calendar, err := s.Earnings(groupCtx, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "earnings", "error", err)
			return nil
		}
		snapshot.Earnings = calendar
		return nil
	})

	group.Go(func() error {
		board, err := s.Predictions(groupCtx, opts)
		if err != nil {
			slog.Warn("snapshot panel unavailable", "panel", "predictions", "error", err)
			return nil
		}
		snapshot.Predictions = board
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot.GeneratedAt = s.now().UTC()
	return snapshot, nil
}

// CacheStats reports the entry partition for the cache namespace.
func (s *DashboardService) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Stats(ctx)
}

// ClearCache removes every entry in the cache namespace and returns how
// many were removed.
func (s *DashboardService) ClearCache(ctx context.Context) int {
	return s.cache.ClearAll(ctx)
}

// InvalidateKey removes a single cache entry.
func (s *DashboardService) InvalidateKey(ctx context.Context, key string) {
	s.cache.Remove(ctx, key)
}
