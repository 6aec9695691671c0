package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"procurement/internal/util"
	"procurement/models"
)

// Cache is a read-through cache for supplier profiles, which are hot on
// bid listing screens. Entries are invalidated whenever a rating or status
// change touches the supplier row.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl, logger: util.GetLogger()}, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// GetSupplier returns the cached supplier profile, if any. Cache errors are
// treated as misses.
func (c *Cache) GetSupplier(ctx context.Context, id int64) (*models.Supplier, bool) {
	raw, err := c.rdb.Get(ctx, supplierKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("supplier cache read failed", zap.Int64("supplier_id", id), zap.Error(err))
		}
		return nil, false
	}

	var s models.Supplier
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// SetSupplier stores the supplier profile with the configured TTL.
func (c *Cache) SetSupplier(ctx context.Context, s *models.Supplier) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, supplierKey(s.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("supplier cache write failed", zap.Int64("supplier_id", s.ID), zap.Error(err))
	}
}

// InvalidateSupplier drops the cached profile after a rating or status change.
func (c *Cache) InvalidateSupplier(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, supplierKey(id)).Err(); err != nil {
		c.logger.Warn("supplier cache invalidation failed", zap.Int64("supplier_id", id), zap.Error(err))
	}
}

func supplierKey(id int64) string {
	return fmt.Sprintf("supplier:%d", id)
}
