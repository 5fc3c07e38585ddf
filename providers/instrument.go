package providers

import (
	"context"
	"log/slog"
	"time"

	"finboard.app/metrics"
)

// Instrument wraps fetch with latency and outcome recording for one
// provider. outcome is what a successful fetch counts as.
func Instrument[T any](providerName, outcome string, fetch PanelFetch[T]) PanelFetch[T] {
	providerMetrics := metrics.NewProviderMetrics(providerName)

	return func(ctx context.Context) (T, error) {
		start := time.Now()
		response, err := fetch(ctx)
		duration := time.Since(start)

		providerMetrics.RecordLatency(duration.Seconds())

		if err != nil {
			providerMetrics.RecordFetch(metrics.OutcomeError)
			return response, err
		}

		providerMetrics.RecordFetch(outcome)
		slog.Debug("panel fetch completed",
			"provider", providerName,
			"outcome", outcome,
			"duration_ms", duration.Milliseconds())

		return response, nil
	}
}
