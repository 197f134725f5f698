// internal/service/inventory/infrastructure/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"stockyard/internal/pkg/logger"
)

// StockLevelCache 为按 sku 的读路径提供 Redis 读穿缓存。
// 缓存只服务 GET /inventory/{sku}；所有写路径在成功后使对应 sku 失效。
// 缓存故障永远不会导致读请求失败，只会回退到存储层。
type StockLevelCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewStockLevelCache 创建一个新的读缓存实例。
func NewStockLevelCache(addr string, ttl time.Duration) *StockLevelCache {
	return &StockLevelCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func levelKey(sku string) string {
	return fmt.Sprintf("inventory:levels:{%s}", sku)
}

// GetLevels 先查缓存，未命中时通过 load 回源并写回。
// 用 singleflight 合并同一 sku 的并发回源，避免缓存击穿。
func (c *StockLevelCache) GetLevels(ctx context.Context, sku string, load func(context.Context) (map[string]int, error)) (map[string]int, error) {
	cached, err := c.client.Get(ctx, levelKey(sku)).Bytes()
	if err == nil {
		var levels map[string]int
		if err := json.Unmarshal(cached, &levels); err == nil {
			return levels, nil
		}
		// 缓存内容损坏，当作未命中处理
		logger.Ctx(ctx).Warn().Str("sku", sku).Msg("dropping corrupt cache entry")
	} else if err != redis.Nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("stock level cache unavailable, falling back to store")
		return load(ctx)
	}

	value, err, _ := c.group.Do(sku, func() (interface{}, error) {
		levels, err := load(ctx)
		if err != nil {
			return nil, err
		}
		// 回源与写回之间落下的 Invalidate 会被这次 Set 覆盖，
		// 旧值最长存活一个 TTL。读路径只承诺最终一致，不做写回前的二次校验。
		if data, err := json.Marshal(levels); err == nil {
			if err := c.client.Set(ctx, levelKey(sku), data, c.ttl).Err(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("failed to fill stock level cache")
			}
		}
		return levels, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(map[string]int), nil
}

// Invalidate 使一个 sku 的缓存条目失效。写路径成功后调用。
func (c *StockLevelCache) Invalidate(ctx context.Context, sku string) {
	if err := c.client.Del(ctx, levelKey(sku)).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("failed to invalidate stock level cache")
	}
}
