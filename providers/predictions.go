package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finboard.app/config"
	"finboard.app/errors"
	"finboard.app/models"
)

// maxPredictionMarkets is how many markets the board tracks, highest volume
// first.
const maxPredictionMarkets = 6

// PredictionsProvider fetches open prediction markets from the exchange's
// public gamma API. No API key required.
type PredictionsProvider struct {
	baseURL string
	client  *http.Client
}

func NewPredictionsProvider(config *config.ProvidersConfig) *PredictionsProvider {
	return &PredictionsProvider{
		baseURL: config.PredictionsBaseURL,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

// predictionWire is one market row. The exchange encodes outcome prices and
// volume as JSON strings; outcomePrices is itself a JSON-encoded array.
type predictionWire struct {
	Question      string `json:"question"`
	OutcomePrices string `json:"outcomePrices"`
	Volume        string `json:"volume"`
	EndDate       string `json:"endDate"`
}

// FetchPredictions retrieves the highest-volume open markets.
func (p *PredictionsProvider) FetchPredictions(ctx context.Context) (*models.PredictionBoard, error) {
	url := fmt.Sprintf("%s/markets?active=true&closed=false&order=volume&ascending=false&limit=%d", p.baseURL, maxPredictionMarkets)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build predictions request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get prediction market data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("predictions API returned status code %d", resp.StatusCode), nil)
	}

	var result []predictionWire
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode prediction market data", err)
	}

	markets := make([]models.PredictionMarket, 0, len(result))
	for _, entry := range result {
		// Markets with unparsable prices are skipped rather than failing
		// the whole board
		var prices []string
		if err := json.Unmarshal([]byte(entry.OutcomePrices), &prices); err != nil || len(prices) == 0 {
			continue
		}
		yesPrice, err := strconv.ParseFloat(prices[0], 64)
		if err != nil {
			continue
		}
		volume, err := strconv.ParseFloat(entry.Volume, 64)
		if err != nil {
			volume = 0
		}

		markets = append(markets, models.PredictionMarket{
			Question: entry.Question,
			YesPrice: yesPrice,
			Volume:   volume,
			EndDate:  entry.EndDate,
		})
	}

	return &models.PredictionBoard{
		Markets: markets,
		Source:  models.SourceLive,
		AsOf:    time.Now().UTC(),
	}, nil
}
