// Package cache は商品一覧のRedisキャッシュ。
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = "products:gen"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ProductListCache は世代番号付きキーで一覧をキャッシュする。
// 管理画面で更新したら世代を上げ、古いキーはTTLで消える。
type ProductListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewProductListCache(client *redis.Client, ttl time.Duration) *ProductListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductListCache{client: client, ttl: ttl}
}

// Get はヒットしたら v に詰めて true
func (c *ProductListCache) Get(ctx context.Context, query any, v any) (bool, error) {
	key, err := c.key(ctx, query)
	if err != nil {
		return false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ProductListCache) Set(ctx context.Context, query any, v any) error {
	key, err := c.key(ctx, query)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate は世代を上げる
func (c *ProductListCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *ProductListCache) key(ctx context.Context, query any) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return ListKey(gen, query)
}

// ListKey は 世代 + 検索条件のハッシュ
func ListKey(gen int64, query any) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return fmt.Sprintf("products:list:%d:%s", gen, hex.EncodeToString(sum[:])), nil
}
