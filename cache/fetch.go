package cache

import (
	"context"
	"time"
)

// FetchOptions adjusts a single cache-aside call.
type FetchOptions struct {
	// ForceRefresh bypasses the cache lookup and always invokes the
	// producer, overwriting whatever was stored.
	ForceRefresh bool
}

// Fetch wraps producer with cache-aside semantics: return the valid cached
// value if one exists, otherwise invoke the producer, store its result under
// key with the given ttl, and return it. Producer errors propagate unchanged
// to the caller; nothing is stored and nothing is retried on failure.
//
// Concurrent calls for the same key share one producer flight. All callers
// of a given key must request the same T.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, opts FetchOptions, producer func(context.Context) (T, error)) (T, error) {
	if !opts.ForceRefresh {
		var cached T
		if c.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		// A caller that lost the race between its lookup and this flight
		// finds the winner's freshly stored value here.
		if !opts.ForceRefresh {
			var cached T
			if c.Get(ctx, key, &cached) {
				return cached, nil
			}
		}

		value, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
