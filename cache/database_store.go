package cache

import (
	"context"
	"log/slog"
	"time"

	"finboard.app/errors"
	"finboard.app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseStore persists entries in a relational table so cached panels
// survive process restarts. The expires_at column mirrors the envelope's
// deadline for inspection and bulk cleanup; reads return the raw value and
// leave freshness decisions to the envelope.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var record models.CacheRecord
	err := d.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			slog.Error("database cache get failed", "error", err, "key", key)
		}
		return nil, false
	}

	return record.Value, true
}

func (d *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	expiresAt := now
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	record := models.CacheRecord{
		Key:       key,
		Value:     value,
		ExpiresAt: expiresAt,
	}

	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return errors.NewDatabaseError("database cache set failed", err)
	}
	return nil
}

func (d *DatabaseStore) Delete(ctx context.Context, key string) error {
	err := d.db.WithContext(ctx).Delete(&models.CacheRecord{}, "key = ?", key).Error
	if err != nil {
		return errors.NewDatabaseError("database cache delete failed", err)
	}
	return nil
}

func (d *DatabaseStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := d.db.WithContext(ctx).
		Model(&models.CacheRecord{}).
		Where("key LIKE ?", prefix+"%").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, errors.NewDatabaseError("database cache keys failed", err)
	}
	return keys, nil
}

func (d *DatabaseStore) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errors.NewDatabaseError("failed to get database connection", err)
	}
	return sqlDB.Close()
}
