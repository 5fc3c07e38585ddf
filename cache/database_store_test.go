package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"finboard.app/models"
)

// Setup test database with in-memory SQLite
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.CacheRecord{}))

	return db
}

func TestDatabaseStoreOperations(t *testing.T) {
	db := setupTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("value"), time.Minute))

		got, found := store.Get(ctx, "k")
		assert.True(t, found)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("GetAbsentKey", func(t *testing.T) {
		got, found := store.Get(ctx, "missing")
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("SetUpserts", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("first"), time.Minute))
		require.NoError(t, store.Set(ctx, "k", []byte("second"), time.Minute))

		got, found := store.Get(ctx, "k")
		assert.True(t, found)
		assert.Equal(t, []byte("second"), got)

		var count int64
		require.NoError(t, db.Model(&models.CacheRecord{}).Where("key = ?", "k").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ExpiresAtRecorded", func(t *testing.T) {
		before := time.Now()
		require.NoError(t, store.Set(ctx, "with-ttl", []byte("v"), time.Hour))

		var record models.CacheRecord
		require.NoError(t, db.First(&record, "key = ?", "with-ttl").Error)
		assert.True(t, record.ExpiresAt.After(before.Add(59*time.Minute)))
	})

	t.Run("ReadsDoNotFilterOnExpiresAt", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "native-stale", []byte("kept"), -time.Minute))

		got, found := store.Get(ctx, "native-stale")
		assert.True(t, found)
		assert.Equal(t, []byte("kept"), got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "gone", []byte("v"), time.Minute))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, found := store.Get(ctx, "gone")
		assert.False(t, found)
	})

	t.Run("DeleteAbsentKey", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})

	t.Run("KeysFiltersByPrefix", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewDatabaseStore(db)

		require.NoError(t, store.Set(ctx, "app:a", []byte("1"), time.Minute))
		require.NoError(t, store.Set(ctx, "app:b", []byte("2"), time.Minute))
		require.NoError(t, store.Set(ctx, "other:c", []byte("3"), time.Minute))

		keys, err := store.Keys(ctx, "app:")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"app:a", "app:b"}, keys)
	})
}

// TestCacheOverDatabaseStore runs the full cache behavior against the
// persistent backend: entries survive in the table until a read observes
// their expiry.
func TestCacheOverDatabaseStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewDatabaseStore(db)

	clock := newFakeClock()
	c := New(store, "finboard")
	c.now = clock.Now

	ctx := context.Background()

	c.Set(ctx, "sentiment", testPayload{N: 55}, time.Hour)

	var got testPayload
	assert.True(t, c.Get(ctx, "sentiment", &got))
	assert.Equal(t, 55, got.N)

	clock.Advance(2 * time.Hour)

	// The stale row is still in the table until a read notices it.
	var count int64
	require.NoError(t, db.Model(&models.CacheRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.False(t, c.Get(ctx, "sentiment", &got))

	require.NoError(t, db.Model(&models.CacheRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCacheStatsOverDatabaseStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewDatabaseStore(db)

	clock := newFakeClock()
	c := New(store, "finboard")
	c.now = clock.Now

	ctx := context.Background()

	c.Set(ctx, "old", testPayload{N: 1}, time.Minute)
	clock.Advance(time.Hour)
	c.Set(ctx, "fresh", testPayload{N: 2}, time.Hour)

	stats := c.Stats(ctx)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ValidEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
}
