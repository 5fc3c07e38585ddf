package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finboard.app/config"
	"finboard.app/errors"
	"finboard.app/models"
)

// volatilitySymbol is the bond market volatility index ticker on the market
// data vendor.
const volatilitySymbol = "MOVE"

// MarketDataProvider fetches quotes, the volatility index, and the earnings
// calendar from the market data vendor. Requires an API key.
type MarketDataProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewMarketDataProvider(config *config.ProvidersConfig) *MarketDataProvider {
	return &MarketDataProvider{
		apiKey:  config.MarketDataAPIKey,
		baseURL: config.MarketDataBaseURL,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

// quoteWire is the vendor's quote payload. A response of all zeros means
// the symbol is unknown to the vendor.
type quoteWire struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (w *quoteWire) isEmpty() bool {
	return w.Current == 0 && w.PreviousClose == 0 && w.Timestamp == 0
}

func (p *MarketDataProvider) fetchQuote(ctx context.Context, symbol string) (*quoteWire, error) {
	requestURL := fmt.Sprintf("%s/quote?symbol=%s&token=%s", p.baseURL, url.QueryEscape(symbol), p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build quote request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get quote data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("market data API returned status code %d", resp.StatusCode), nil)
	}

	var result quoteWire
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode quote data", err)
	}

	return &result, nil
}

// FetchQuote retrieves a delayed quote for one symbol.
func (p *MarketDataProvider) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if symbol == "" {
		return nil, errors.NewValidationError("symbol cannot be empty")
	}

	quote, err := p.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if quote.isEmpty() {
		return nil, errors.NewNotFoundError(fmt.Sprintf("unknown symbol: %s", symbol))
	}

	return &models.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         quote.Current,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Source:        models.SourceLive,
		AsOf:          time.Now().UTC(),
	}, nil
}

// FetchVolatility retrieves the bond volatility index reading.
func (p *MarketDataProvider) FetchVolatility(ctx context.Context) (*models.VolatilityIndex, error) {
	quote, err := p.fetchQuote(ctx, volatilitySymbol)
	if err != nil {
		return nil, err
	}

	if quote.isEmpty() {
		return nil, errors.NewExternalAPIError("market data API has no volatility index data", nil)
	}

	return &models.VolatilityIndex{
		Level:  quote.Current,
		Change: quote.Change,
		Source: models.SourceLive,
		AsOf:   time.Now().UTC(),
	}, nil
}

type earningsWire struct {
	EarningsCalendar []struct {
		Date        string  `json:"date"`
		EPSEstimate float64 `json:"epsEstimate"`
		Hour        string  `json:"hour"`
		Symbol      string  `json:"symbol"`
	} `json:"earningsCalendar"`
}

// FetchEarnings retrieves the earnings calendar for a date window.
func (p *MarketDataProvider) FetchEarnings(ctx context.Context, from, to time.Time) (*models.EarningsCalendar, error) {
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")
	requestURL := fmt.Sprintf("%s/calendar/earnings?from=%s&to=%s&token=%s", p.baseURL, fromDate, toDate, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build earnings request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get earnings data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("market data API returned status code %d", resp.StatusCode), nil)
	}

	var result earningsWire
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode earnings data", err)
	}

	events := make([]models.EarningsEvent, 0, len(result.EarningsCalendar))
	for _, entry := range result.EarningsCalendar {
		events = append(events, models.EarningsEvent{
			Symbol:      entry.Symbol,
			Date:        entry.Date,
			Hour:        entry.Hour,
			EPSEstimate: entry.EPSEstimate,
		})
	}

	return &models.EarningsCalendar{
		From:   fromDate,
		To:     toDate,
		Events: events,
		Source: models.SourceLive,
		AsOf:   time.Now().UTC(),
	}, nil
}
