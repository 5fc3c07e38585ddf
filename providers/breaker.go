package providers

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "finboard.app/errors"
)

// Breaker guards one upstream with a circuit breaker. Panels served by the
// same upstream share a single breaker.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreaker(name string) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Validation and not-found errors are definite upstream answers and
		// must not count toward tripping the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr.Type == apperrors.ValidationError || appErr.Type == apperrors.NotFoundError
			}
			return false
		},
	}

	return &Breaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Guard wraps fetch so a tripped breaker fails fast instead of waiting on a
// broken upstream.
func Guard[T any](b *Breaker, fetch PanelFetch[T]) PanelFetch[T] {
	return func(ctx context.Context) (T, error) {
		result, err := b.cb.Execute(func() (any, error) {
			return fetch(ctx)
		})
		if err != nil {
			var zero T
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return zero, apperrors.NewExternalAPIError(b.name+" circuit breaker is open", err)
			}
			return zero, err
		}

		return result.(T), nil
	}
}
