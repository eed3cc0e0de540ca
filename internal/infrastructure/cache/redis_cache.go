package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
)

var _ ports.Cache = (*RedisCache)(nil)

const tagPrefix = "tag:"

// RedisCache caché de lecturas sobre Redis. Cada etiqueta es un SET con las claves que la llevan.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache crea el cliente. prefix aísla las claves de esta app (ej. "shopmaster:").
func NewRedisCache(addr, password string, db int, prefix string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, prefix: prefix}
}

// Ping verifica la conexión.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set guarda el valor y lo agrega al SET de cada etiqueta en un solo pipeline MULTI.
// El SET de etiqueta vive al menos tanto como la clave más nueva.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	full := c.prefix + key
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, full, value, ttl)
		for _, tag := range tags {
			tk := c.prefix + tagPrefix + tag
			p.SAdd(ctx, tk, full)
			if ttl > 0 {
				p.Expire(ctx, tk, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateByTag(ctx context.Context, tag string) error {
	tk := c.prefix + tagPrefix + tag
	keys, err := c.client.SMembers(ctx, tk).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}
	keys = append(keys, tk)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidateByPattern recorre con SCAN (nunca KEYS) y borra por lotes.
func (c *RedisCache) InvalidateByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, c.prefix+pattern, 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}
