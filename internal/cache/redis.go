package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// Options Redis 连接参数
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache Redis 缓存客户端
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存客户端，并测试连接
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	c := &RedisCache{client: client}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return c, nil
}

// Ping 检查 Redis 连通性（就绪探针使用）
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Set 设置缓存（带过期时间）
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("get cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal cache data: %w", err)
	}

	return nil
}

// Delete 删除缓存
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// CacheKey 生成缓存 key
func CacheKey(prefix string, parts ...string) string {
	return "vision-taskhub:" + strings.Join(append([]string{prefix}, parts...), ":")
}
