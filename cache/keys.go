package cache

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Logical keys for the dashboard panels. Date-qualified keys embed the
// calendar date so a new trading day starts cold regardless of remaining
// TTL.

func YieldCurveKey(day time.Time) string {
	return fmt.Sprintf("yields:%s", day.Format(dateLayout))
}

func SentimentKey() string {
	return "sentiment"
}

func VolatilityKey() string {
	return "volatility"
}

func QuoteKey(symbol string) string {
	return fmt.Sprintf("quote:%s", strings.ToUpper(symbol))
}

func NewsKey(category string) string {
	return fmt.Sprintf("news:%s", category)
}

func EarningsKey(day time.Time) string {
	return fmt.Sprintf("earnings:%s", day.Format(dateLayout))
}

func PredictionsKey() string {
	return "predictions"
}
