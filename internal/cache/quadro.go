package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// quadroKey 奖牌榜缓存键
const quadroKey = "medalboard:quadro"

// QuadroCache 奖牌榜读缓存（redis）。写操作提交后必须失效，读路径未命中时回源重算
type QuadroCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuadroCache 创建奖牌榜缓存。addr 为空表示未配置 redis，返回 nil（调用方按无缓存处理）
func NewQuadroCache(addr, password string, db int, ttl time.Duration) *QuadroCache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &QuadroCache{rdb: rdb, ttl: ttl}
}

// Get 读取缓存的奖牌榜 JSON。未命中返回 (nil, nil)
func (c *QuadroCache) Get(ctx context.Context) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, quadroKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Set 写入奖牌榜 JSON，带 TTL 兜底（失效消息丢失时最多脏 ttl 时长）
func (c *QuadroCache) Set(ctx context.Context, payload []byte) error {
	return c.rdb.Set(ctx, quadroKey, payload, c.ttl).Err()
}

// Invalidate 写操作提交后删除缓存
func (c *QuadroCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, quadroKey).Err()
}

// Ping 启动时连通性检查
func (c *QuadroCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
