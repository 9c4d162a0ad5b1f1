package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SchemaCache keeps per-account field-definition snapshots in Redis so a
// burst of ingest calls doesn't re-read the schema on every delivery.
//
// Staleness is bounded by the TTL and by explicit invalidation on every
// field write (admin or auto-create). A stale snapshot is already part of
// the pipeline's contract — a definition added concurrently is picked up
// by the next call, not the in-flight one — so caching changes nothing
// observable. Redis being down degrades every lookup to a miss; it never
// fails an ingest.
//
// A nil *SchemaCache is valid and always misses, which is how the cache
// is disabled when REDIS_URL is unset.
type SchemaCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

const keyPrefix = "leadgate:schema:"

func NewSchemaCache(ctx context.Context, redisURL string, ttl time.Duration, logger *zap.Logger) (*SchemaCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &SchemaCache{rdb: rdb, ttl: ttl, logger: logger}, nil
}

func (c *SchemaCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns the cached snapshot and whether it was present.
func (c *SchemaCache) Get(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+accountID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("schema cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var defs []models.FieldDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		c.logger.Warn("schema cache entry corrupt, dropping", zap.Error(err))
		c.Invalidate(ctx, accountID)
		return nil, false
	}
	return defs, true
}

func (c *SchemaCache) Set(ctx context.Context, accountID uuid.UUID, defs []models.FieldDefinition) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(defs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+accountID.String(), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("schema cache write failed", zap.Error(err))
	}
}

// Invalidate drops the snapshot after any field write. Dropping instead
// of updating in place keeps concurrent writers from clobbering each
// other's view; the next reader repopulates from Postgres.
func (c *SchemaCache) Invalidate(ctx context.Context, accountID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, keyPrefix+accountID.String()).Err(); err != nil {
		c.logger.Debug("schema cache invalidate failed", zap.Error(err))
	}
}
