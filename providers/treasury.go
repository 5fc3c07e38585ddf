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

// TreasuryProvider fetches the daily treasury par yield curve from the
// fiscal data API. The endpoint is public and needs no API key.
type TreasuryProvider struct {
	baseURL string
	client  *http.Client
}

func NewTreasuryProvider(config *config.ProvidersConfig) *TreasuryProvider {
	return &TreasuryProvider{
		baseURL: config.TreasuryBaseURL,
		client:  &http.Client{Timeout: config.RequestTimeout},
	}
}

// maturityColumns maps fiscal data column names to curve labels, shortest
// maturity first. Point order on the curve follows this order.
var maturityColumns = []struct {
	field string
	label string
}{
	{"1_mo", "1M"},
	{"3_mo", "3M"},
	{"6_mo", "6M"},
	{"1_yr", "1Y"},
	{"2_yr", "2Y"},
	{"3_yr", "3Y"},
	{"5_yr", "5Y"},
	{"7_yr", "7Y"},
	{"10_yr", "10Y"},
	{"20_yr", "20Y"},
	{"30_yr", "30Y"},
}

// FetchYieldCurve retrieves the most recent published yield curve.
func (p *TreasuryProvider) FetchYieldCurve(ctx context.Context) (*models.YieldCurve, error) {
	url := fmt.Sprintf("%s/v2/accounting/od/daily_treasury_yield_curve?sort=-record_date&page[size]=1&format=json", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build yield curve request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get yield curve data", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("treasury API returned status code %d", resp.StatusCode), nil)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode yield curve data", err)
	}

	data, ok := result["data"].([]interface{})
	if !ok || len(data) == 0 {
		return nil, errors.NewExternalAPIError("invalid yield curve data format: missing data field", nil)
	}

	row, ok := data[0].(map[string]interface{})
	if !ok {
		return nil, errors.NewExternalAPIError("invalid yield curve data format: bad data row", nil)
	}

	recordDate, ok := row["record_date"].(string)
	if !ok {
		return nil, errors.NewExternalAPIError("invalid yield curve data format: missing record_date", nil)
	}

	points := make([]models.YieldPoint, 0, len(maturityColumns))
	for _, column := range maturityColumns {
		// Rates arrive as strings; not every maturity is quoted every day
		raw, ok := row[column.field].(string)
		if !ok || raw == "" {
			continue
		}
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		points = append(points, models.YieldPoint{Maturity: column.label, Rate: rate})
	}

	if len(points) == 0 {
		return nil, errors.NewExternalAPIError("invalid yield curve data format: no maturities", nil)
	}

	return &models.YieldCurve{
		CurveDate: recordDate,
		Points:    points,
		Source:    models.SourceLive,
		AsOf:      time.Now().UTC(),
	}, nil
}
