package providers

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"finboard.app/errors"
	"finboard.app/models"
)

// DemoProvider serves bundled snapshot data so the dashboard renders without
// upstream access. Every payload is tagged as fallback.
type DemoProvider struct {
	now func() time.Time
}

func NewDemoProvider() *DemoProvider {
	return &DemoProvider{now: time.Now}
}

var demoCurvePoints = []models.YieldPoint{
	{Maturity: "1M", Rate: 4.41},
	{Maturity: "3M", Rate: 4.34},
	{Maturity: "6M", Rate: 4.19},
	{Maturity: "1Y", Rate: 4.02},
	{Maturity: "2Y", Rate: 3.87},
	{Maturity: "3Y", Rate: 3.82},
	{Maturity: "5Y", Rate: 3.86},
	{Maturity: "7Y", Rate: 3.96},
	{Maturity: "10Y", Rate: 4.12},
	{Maturity: "20Y", Rate: 4.48},
	{Maturity: "30Y", Rate: 4.55},
}

func (p *DemoProvider) FetchYieldCurve(_ context.Context) (*models.YieldCurve, error) {
	now := p.now().UTC()

	// Copy so callers cannot mutate the shared snapshot
	points := make([]models.YieldPoint, len(demoCurvePoints))
	copy(points, demoCurvePoints)

	return &models.YieldCurve{
		CurveDate: now.Format("2006-01-02"),
		Points:    points,
		Source:    models.SourceFallback,
		AsOf:      now,
	}, nil
}

func (p *DemoProvider) FetchSentiment(_ context.Context) (*models.SentimentIndex, error) {
	return &models.SentimentIndex{
		Value:          38,
		Classification: "Fear",
		Source:         models.SourceFallback,
		AsOf:           p.now().UTC(),
	}, nil
}

func (p *DemoProvider) FetchVolatility(_ context.Context) (*models.VolatilityIndex, error) {
	return &models.VolatilityIndex{
		Level:  98.4,
		Change: -1.25,
		Source: models.SourceFallback,
		AsOf:   p.now().UTC(),
	}, nil
}

var demoQuotes = map[string]struct {
	price  float64
	change float64
}{
	"SPY": {price: 512.36, change: -2.14},
	"QQQ": {price: 438.91, change: -4.87},
	"TLT": {price: 94.62, change: 0.38},
	"DIA": {price: 402.18, change: -0.95},
	"IWM": {price: 218.73, change: -1.42},
}

func (p *DemoProvider) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	key := strings.ToUpper(symbol)
	quote, ok := demoQuotes[key]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("unknown symbol: %s", key))
	}

	previousClose := quote.price - quote.change
	changePercent := math.Round(quote.change/previousClose*10000) / 100

	return &models.Quote{
		Symbol:        key,
		Price:         quote.price,
		Change:        quote.change,
		ChangePercent: changePercent,
		Source:        models.SourceFallback,
		AsOf:          p.now().UTC(),
	}, nil
}

var demoHeadlines = map[string][]struct {
	title     string
	publisher string
	url       string
	ageHours  int
}{
	"markets": {
		{"Stocks drift lower as traders weigh rate path", "Newswire", "https://example.com/markets/1", 1},
		{"Treasury yields edge up ahead of auction", "Market Desk", "https://example.com/markets/2", 3},
		{"Earnings season winds down with retail in focus", "Newswire", "https://example.com/markets/3", 6},
	},
	"economy": {
		{"Jobless claims hold near cycle lows", "Econ Daily", "https://example.com/economy/1", 2},
		{"Housing starts miss forecasts for second month", "Econ Daily", "https://example.com/economy/2", 5},
		{"Fed officials split on timing of next move", "Newswire", "https://example.com/economy/3", 8},
	},
	"crypto": {
		{"Bitcoin holds range as ETF flows slow", "Chain Report", "https://example.com/crypto/1", 1},
		{"Ether staking yields compress after upgrade", "Chain Report", "https://example.com/crypto/2", 4},
		{"Stablecoin supply hits new high", "Newswire", "https://example.com/crypto/3", 9},
	},
}

func (p *DemoProvider) FetchNews(_ context.Context, category string) (*models.NewsFeed, error) {
	headlines, ok := demoHeadlines[category]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported news category: %s", category))
	}

	now := p.now().UTC()
	items := make([]models.NewsItem, 0, len(headlines))
	for _, headline := range headlines {
		items = append(items, models.NewsItem{
			Title:       headline.title,
			URL:         headline.url,
			Publisher:   headline.publisher,
			PublishedAt: now.Add(-time.Duration(headline.ageHours) * time.Hour).Unix(),
		})
	}

	return &models.NewsFeed{
		Category: category,
		Items:    items,
		Source:   models.SourceFallback,
		AsOf:     now,
	}, nil
}

var demoEarnings = []struct {
	symbol     string
	company    string
	hour       string
	offsetDays int
	eps        float64
}{
	{"NVDA", "NVIDIA Corp", "amc", 1, 0.94},
	{"CRM", "Salesforce Inc", "amc", 2, 2.44},
	{"AVGO", "Broadcom Inc", "amc", 4, 1.56},
	{"KR", "Kroger Co", "bmo", 5, 1.01},
}

func (p *DemoProvider) FetchEarnings(_ context.Context, from, to time.Time) (*models.EarningsCalendar, error) {
	events := make([]models.EarningsEvent, 0, len(demoEarnings))
	for _, entry := range demoEarnings {
		date := from.AddDate(0, 0, entry.offsetDays)
		if date.After(to) {
			continue
		}
		events = append(events, models.EarningsEvent{
			Symbol:      entry.symbol,
			Company:     entry.company,
			Date:        date.Format("2006-01-02"),
			Hour:        entry.hour,
			EPSEstimate: entry.eps,
		})
	}

	return &models.EarningsCalendar{
		From:   from.Format("2006-01-02"),
		To:     to.Format("2006-01-02"),
		Events: events,
		Source: models.SourceFallback,
		AsOf:   p.now().UTC(),
	}, nil
}

var demoMarkets = []struct {
	question string
	yesPrice float64
	volume   float64
	daysOut  int
}{
	{"Will the Fed cut rates at the next FOMC meeting?", 0.72, 18425000, 35},
	{"Will US CPI come in above 3% this month?", 0.31, 6120000, 12},
	{"Will bitcoin close the year above $150k?", 0.44, 52800000, 132},
}

func (p *DemoProvider) FetchPredictions(_ context.Context) (*models.PredictionBoard, error) {
	now := p.now().UTC()
	markets := make([]models.PredictionMarket, 0, len(demoMarkets))
	for _, entry := range demoMarkets {
		markets = append(markets, models.PredictionMarket{
			Question: entry.question,
			YesPrice: entry.yesPrice,
			Volume:   entry.volume,
			EndDate:  now.AddDate(0, 0, entry.daysOut).Format(time.RFC3339),
		})
	}

	return &models.PredictionBoard{
		Markets: markets,
		Source:  models.SourceFallback,
		AsOf:    now,
	}, nil
}
