// Package redis caches parsed sig results keyed by normalized
// instruction text. Cache failures degrade to slower parses, never to
// request failures.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

type SigCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Options struct {
	Prefix string
	TTL    time.Duration
}

func New(url string, options Options) (*SigCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	prefix := options.Prefix
	if prefix == "" {
		prefix = "sig:"
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &SigCache{
		client: redis.NewClient(opts),
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client *redis.Client, options Options) *SigCache {
	prefix := options.Prefix
	if prefix == "" {
		prefix = "sig:"
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SigCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *SigCache) Close() error {
	return c.client.Close()
}

func (c *SigCache) Get(ctx context.Context, key string) (*domain.ParsedInstruction, error) {
	payload, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.WrapError(domain.ErrCacheMiss, "cache get", err)
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var parsed domain.ParsedInstruction
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &parsed, nil
}

func (c *SigCache) Set(ctx context.Context, key string, parsed *domain.ParsedInstruction) error {
	if parsed == nil {
		return fmt.Errorf("cache set: nil instruction")
	}
	payload, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *SigCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
