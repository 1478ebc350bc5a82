package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/cashier-backend/pkg/clients"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const productKeyPrefix = "pos:product:"

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts возвращает закэшированные товары по ID. Промахи и битые записи пропускаются.
func (r *CacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]domain.ProductInfo, error) {
	if len(ids) == 0 {
		return map[int64]domain.ProductInfo{}, nil
	}

	keys := buildProductCacheKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]domain.ProductInfo, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		var model converter.ProductInfoRedisModel
		if err := json.Unmarshal(data, &model); err != nil {
			r.logger.Warnf("redis unmarshal failed: key=%s: %v", keys[i], e.Wrap(whereami.WhereAmI(), err))
			r.evict(keys[i])
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("cache id mismatch: key_id=%d model_id=%d", ids[i], model.ID)
			r.evict(keys[i])
			continue
		}

		result[ids[i]] = *r.conv.ToEntity(&model)
	}

	return result, nil
}

// SetProducts кэширует товары одним pipeline с TTL из конфига.
func (r *CacheRepo) SetProducts(ctx context.Context, products []domain.ProductInfo) error {
	if len(products) == 0 {
		return nil
	}

	pipeline := r.client.Client.Pipeline()
	for _, model := range r.conv.ToArrRedisModel(products) {
		data, err := json.Marshal(model)
		if err != nil {
			r.logger.Warnf("failed to marshal product for cache: product_id=%d: %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		pipeline.Set(ctx, productKey(model.ID), data, r.cfg.ProductTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteProducts удаляет товары из кэша.
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.client.Client.Del(ctx, buildProductCacheKeys(ids)...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *CacheRepo) evict(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		r.logger.Warnf("redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func buildProductCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	return keys
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

// redisValueToBytes приводит значение из MGET к []byte; nil означает промах.
func redisValueToBytes(val any, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected redis value type for key %s: %T", key, val)
	}
}
