// Package models defines data structures used throughout the application
package models

import (
	"time"
)

// Source identifies where panel data came from
type Source string

const (
	// SourceLive marks data fetched from the upstream API
	SourceLive Source = "live"
	// SourceFallback marks bundled demo data served when no live data is available
	SourceFallback Source = "fallback"
)

// YieldPoint is a single maturity on the treasury yield curve
type YieldPoint struct {
	Maturity string  `json:"maturity"`
	Rate     float64 `json:"rate"`
}

// YieldCurve represents the treasury yield curve for one trading day
type YieldCurve struct {
	CurveDate string       `json:"curve_date"`
	Points    []YieldPoint `json:"points"`
	Source    Source       `json:"source"`
	AsOf      time.Time    `json:"as_of"`
}

// SentimentIndex represents the crypto fear and greed index
type SentimentIndex struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Source         Source    `json:"source"`
	AsOf           time.Time `json:"as_of"`
}

// VolatilityIndex represents a bond market volatility reading
type VolatilityIndex struct {
	Level  float64   `json:"level"`
	Change float64   `json:"change"`
	Source Source    `json:"source"`
	AsOf   time.Time `json:"as_of"`
}

// Quote represents a delayed market quote for a single symbol
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Source        Source    `json:"source"`
	AsOf          time.Time `json:"as_of"`
}

// NewsItem is a single headline in a news feed
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Publisher   string `json:"publisher"`
	PublishedAt int64  `json:"published_at"`
}

// NewsFeed represents the headlines for one news category
type NewsFeed struct {
	Category string     `json:"category"`
	Items    []NewsItem `json:"items"`
	Source   Source     `json:"source"`
	AsOf     time.Time  `json:"as_of"`
}

// EarningsEvent is a single company report on the earnings calendar
type EarningsEvent struct {
	Symbol      string  `json:"symbol"`
	Company     string  `json:"company"`
	Date        string  `json:"date"`
	Hour        string  `json:"hour"`
	EPSEstimate float64 `json:"eps_estimate"`
}

// EarningsCalendar represents upcoming earnings reports for a date window
type EarningsCalendar struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Events []EarningsEvent `json:"events"`
	Source Source          `json:"source"`
	AsOf   time.Time       `json:"as_of"`
}

// PredictionMarket is a single market on a prediction exchange
type PredictionMarket struct {
	Question string  `json:"question"`
	YesPrice float64 `json:"yes_price"`
	Volume   float64 `json:"volume"`
	EndDate  string  `json:"end_date"`
}

// PredictionBoard represents the tracked prediction markets
type PredictionBoard struct {
	Markets []PredictionMarket `json:"markets"`
	Source  Source             `json:"source"`
	AsOf    time.Time          `json:"as_of"`
}

// DashboardSnapshot bundles every panel into one response; nil panels were unavailable
type DashboardSnapshot struct {
	Yields      *YieldCurve       `json:"yields,omitempty"`
	Sentiment   *SentimentIndex   `json:"sentiment,omitempty"`
	Volatility  *VolatilityIndex  `json:"volatility,omitempty"`
	Quotes      []Quote           `json:"quotes,omitempty"`
	News        *NewsFeed         `json:"news,omitempty"`
	Earnings    *EarningsCalendar `json:"earnings,omitempty"`
	Predictions *PredictionBoard  `json:"predictions,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// CacheRecord is the persisted form of one cache entry in the database backend
type CacheRecord struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     []byte    `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteRequest represents query parameters for a quote lookup
type QuoteRequest struct {
	Symbol string `form:"symbol" binding:"required,symbol"`
}

// NewsRequest represents query parameters for a news feed lookup
type NewsRequest struct {
	Category string `form:"category" binding:"omitempty,oneof=markets economy crypto"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
