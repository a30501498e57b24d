package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"yard-dashboard/pkg/types"
)

// CacheRepositoryInterface is a plain string cache with TTL.
type CacheRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisCacheRepository struct {
	client *redis.Client
}

func NewRedisCacheRepository(client *redis.Client) CacheRepositoryInterface {
	return &RedisCacheRepository{client: client}
}

func (r *RedisCacheRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCacheRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

const rawTablesCacheKey = "yard:sheets:raw:v1"

// CachedSheetRepository keeps the raw fetch result for a bounded
// freshness window so a burst of dashboard interactions does not
// refetch the spreadsheet. Cache trouble is never fatal: a miss or a
// redis error just falls through to the inner source.
type CachedSheetRepository struct {
	inner  SheetRepositoryInterface
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSheetRepository(inner SheetRepositoryInterface, cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *CachedSheetRepository {
	return &CachedSheetRepository{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedSheetRepository) LoadAll(ctx context.Context) (map[string]types.RawTable, error) {
	if cached, err := r.cache.Get(ctx, rawTablesCacheKey); err == nil {
		var tables map[string]types.RawTable
		if err := json.Unmarshal([]byte(cached), &tables); err == nil {
			return tables, nil
		}
		r.logger.Warn("corrupt cache entry, refetching", zap.String("key", rawTablesCacheKey))
		_ = r.cache.Del(ctx, rawTablesCacheKey)
	} else if err != redis.Nil {
		r.logger.Warn("cache read failed, falling through to source", zap.Error(err))
	}

	tables, err := r.inner.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(tables); err == nil {
		if err := r.cache.Set(ctx, rawTablesCacheKey, payload, r.ttl); err != nil {
			r.logger.Warn("cache write failed", zap.Error(err))
		}
	}
	return tables, nil
}
