package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finboard.app/config"
	"finboard.app/errors"
	"finboard.app/models"
)

// maxNewsItems caps how many headlines a feed carries.
const maxNewsItems = 20

// newsCategories maps dashboard categories to the vendor's category names.
var newsCategories = map[string]string{
	"markets": "general",
	"economy": "economy",
	"crypto":  "crypto",
}

// NewsProvider fetches headline feeds from the market data vendor.
// Requires an API key.
type NewsProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsProvider(config *config.ProvidersConfig) *NewsProvider {
	return &NewsProvider{
		apiKey:  config.MarketDataAPIKey,
		baseURL: config.NewsBaseURL,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

type newsWire struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// FetchNews retrieves the headline feed for one category.
func (p *NewsProvider) FetchNews(ctx context.Context, category string) (*models.NewsFeed, error) {
	vendorCategory, ok := newsCategories[category]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported news category: %s", category))
	}

	url := fmt.Sprintf("%s/news?category=%s&token=%s", p.baseURL, vendorCategory, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build news request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get news data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("news API returned status code %d", resp.StatusCode), nil)
	}

	var result []newsWire
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode news data", err)
	}

	if len(result) > maxNewsItems {
		result = result[:maxNewsItems]
	}

	items := make([]models.NewsItem, 0, len(result))
	for _, entry := range result {
		items = append(items, models.NewsItem{
			Title:       entry.Headline,
			URL:         entry.URL,
			Publisher:   entry.Source,
			PublishedAt: entry.Datetime,
		})
	}

	return &models.NewsFeed{
		Category: category,
		Items:    items,
		Source:   models.SourceLive,
		AsOf:     time.Now().UTC(),
	}, nil
}
