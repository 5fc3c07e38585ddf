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

// SentimentProvider fetches the fear and greed index. The upstream returns
// numeric values as JSON strings.
type SentimentProvider struct {
	baseURL string
	client  *http.Client
}

func NewSentimentProvider(config *config.ProvidersConfig) *SentimentProvider {
	return &SentimentProvider{
		baseURL: config.SentimentBaseURL,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

// FetchSentiment retrieves the latest fear and greed reading.
func (p *SentimentProvider) FetchSentiment(ctx context.Context) (*models.SentimentIndex, error) {
	url := fmt.Sprintf("%s/fng/?limit=1&format=json", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build sentiment request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get sentiment data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("sentiment API returned status code %d", resp.StatusCode), nil)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode sentiment data", err)
	}

	data, ok := result["data"].([]interface{})
	if !ok || len(data) == 0 {
		return nil, errors.NewExternalAPIError("invalid sentiment data format: missing data field", nil)
	}

	entry, ok := data[0].(map[string]interface{})
	if !ok {
		return nil, errors.NewExternalAPIError("invalid sentiment data format: bad data entry", nil)
	}

	rawValue, ok := entry["value"].(string)
	if !ok {
		return nil, errors.NewExternalAPIError("invalid sentiment data format: missing value", nil)
	}

	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return nil, errors.NewExternalAPIError("invalid sentiment data format: non-numeric value", err)
	}

	classification, ok := entry["value_classification"].(string)
	if !ok {
		return nil, errors.NewExternalAPIError("invalid sentiment data format: missing classification", nil)
	}

	return &models.SentimentIndex{
		Value:          value,
		Classification: classification,
		Source:         models.SourceLive,
		AsOf:           time.Now().UTC(),
	}, nil
}
