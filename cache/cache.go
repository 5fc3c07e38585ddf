package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is the stored envelope for one cache key. StoredAt and TTLMillis are
// epoch/interval milliseconds; the payload is opaque JSON.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	StoredAt  int64           `json:"stored_at"`
	TTLMillis int64           `json:"ttl_ms"`
}

// ValidAt reports whether the entry is still fresh at the given instant.
func (e *Entry) ValidAt(t time.Time) bool {
	return t.UnixMilli()-e.StoredAt <= e.TTLMillis
}

// Stats is a point-in-time partition of the namespace by validity.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

// Cache is a TTL cache over an injectable Backend. Every key it owns carries
// the namespace prefix, so bulk operations never touch unrelated data in a
// shared store. Expired entries are removed lazily by the read that observes
// them; there is no background sweep.
//
// Storage failures are logged and degrade to a miss or a dropped write,
// never an error to the caller: a broken backend turns the cache into
// "always fetch fresh".
type Cache struct {
	backend Backend
	prefix  string
	sf      singleflight.Group
	now     func() time.Time
}

func New(backend Backend, namespace string) *Cache {
	return &Cache{
		backend: backend,
		prefix:  namespace + ":",
		now:     time.Now,
	}
}

func (c *Cache) namespaced(key string) string {
	return c.prefix + key
}

// Set stores value under key with the given time-to-live, overwriting any
// prior entry. Marshal and storage failures leave the cache without the
// entry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Error("cache set: marshal failed", "key", key, "error", err)
		return
	}

	entry := Entry{
		Payload:   payload,
		StoredAt:  c.now().UnixMilli(),
		TTLMillis: ttl.Milliseconds(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Error("cache set: envelope marshal failed", "key", key, "error", err)
		return
	}

	if err := c.backend.Set(ctx, c.namespaced(key), data, ttl); err != nil {
		slog.Error("cache set failed", "key", key, "error", err)
	}
}

// Get decodes the entry under key into dest and reports whether a valid
// entry was found. An expired or malformed entry is deleted and treated as
// absent.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	entry, ok := c.readEntry(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		slog.Warn("cache payload decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// IsValid reports whether a valid entry exists under key.
func (c *Cache) IsValid(ctx context.Context, key string) bool {
	_, ok := c.readEntry(ctx, key)
	return ok
}

// Remove deletes the entry under key; absent keys are not an error.
func (c *Cache) Remove(ctx context.Context, key string) {
	c.discard(ctx, c.namespaced(key))
}

// ClearAll deletes every entry in the cache's namespace and returns the
// count removed.
func (c *Cache) ClearAll(ctx context.Context) int {
	keys, err := c.backend.Keys(ctx, c.prefix)
	if err != nil {
		slog.Error("cache clear: enumerate failed", "error", err)
		return 0
	}

	removed := 0
	for _, key := range keys {
		if err := c.backend.Delete(ctx, key); err != nil {
			slog.Error("cache clear: delete failed", "key", key, "error", err)
			continue
		}
		removed++
	}

	slog.Info("cache cleared", "removed", removed)
	return removed
}

// Stats counts the entries in the namespace partitioned by validity at the
// time of the call. Malformed entries count as expired. The snapshot does
// not remove anything.
func (c *Cache) Stats(ctx context.Context) Stats {
	keys, err := c.backend.Keys(ctx, c.prefix)
	if err != nil {
		slog.Error("cache stats: enumerate failed", "error", err)
		return Stats{}
	}

	now := c.now()
	var stats Stats
	for _, key := range keys {
		data, found := c.backend.Get(ctx, key)
		if !found {
			continue
		}
		stats.TotalEntries++

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			stats.ExpiredEntries++
			continue
		}
		if entry.ValidAt(now) {
			stats.ValidEntries++
		} else {
			stats.ExpiredEntries++
		}
	}
	return stats
}

// Cleanup deletes every expired or malformed entry in the namespace and
// returns the count removed. It is the on-demand bulk form of the lazy
// removal reads perform one key at a time.
func (c *Cache) Cleanup(ctx context.Context) int {
	keys, err := c.backend.Keys(ctx, c.prefix)
	if err != nil {
		slog.Error("cache cleanup: enumerate failed", "error", err)
		return 0
	}

	now := c.now()
	removed := 0
	for _, key := range keys {
		data, found := c.backend.Get(ctx, key)
		if !found {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err == nil && entry.ValidAt(now) {
			continue
		}

		if err := c.backend.Delete(ctx, key); err != nil {
			slog.Error("cache cleanup: delete failed", "key", key, "error", err)
			continue
		}
		removed++
	}
	return removed
}

// Close releases the underlying backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

// readEntry loads and validates the envelope under key, removing entries
// that turn out expired or unreadable.
func (c *Cache) readEntry(ctx context.Context, key string) (*Entry, bool) {
	full := c.namespaced(key)

	data, found := c.backend.Get(ctx, full)
	if !found {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("cache entry malformed, dropping", "key", key, "error", err)
		c.discard(ctx, full)
		return nil, false
	}

	if !entry.ValidAt(c.now()) {
		c.discard(ctx, full)
		return nil, false
	}

	return &entry, true
}

func (c *Cache) discard(ctx context.Context, fullKey string) {
	if err := c.backend.Delete(ctx, fullKey); err != nil {
		slog.Error("cache delete failed", "key", fullKey, "error", err)
	}
}
