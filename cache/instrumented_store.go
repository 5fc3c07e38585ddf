package cache

import (
	"context"
	"log/slog"
	"time"

	"finboard.app/metrics"
)

// InstrumentedStore wraps a Backend and reports hit/miss counts and
// operation latency to Prometheus, labeled by backend name.
type InstrumentedStore struct {
	backend Backend
	metrics *metrics.CacheMetrics
}

func NewInstrumentedStore(backend Backend, name string) *InstrumentedStore {
	return &InstrumentedStore{
		backend: backend,
		metrics: metrics.NewCacheMetrics(name),
	}
}

func (s *InstrumentedStore) measureLatency(operation string, fn func()) {
	start := time.Now()
	fn()
	latency := time.Since(start).Seconds()
	s.metrics.RecordLatency(operation, latency)
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	var found bool

	s.measureLatency("get", func() {
		data, found = s.backend.Get(ctx, key)
	})

	if found {
		s.metrics.RecordHit()
		slog.Debug("cache hit", "key", key)
	} else {
		s.metrics.RecordMiss()
		slog.Debug("cache miss", "key", key)
	}

	return data, found
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var err error
	s.measureLatency("set", func() {
		err = s.backend.Set(ctx, key, value, ttl)
	})
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

func (s *InstrumentedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.Keys(ctx, prefix)
}

func (s *InstrumentedStore) Close() error {
	return s.backend.Close()
}

func (s *InstrumentedStore) GetMetrics() *metrics.CacheMetrics {
	return s.metrics
}
