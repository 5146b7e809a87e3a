// Package cache stores email classifications so repeated reads of the same
// message skip the model call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "neura:classification:"

// DefaultTTL applies when a Redis cache is created with a zero TTL.
const DefaultTTL = 24 * time.Hour

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisWithClient(rdb, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) GetClassification(ctx context.Context, key string) (domain.Classification, bool, error) {
	var c domain.Classification
	data, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return c, false, nil
	}
	if err != nil {
		return c, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, false, fmt.Errorf("failed to decode cached classification %s: %w", key, err)
	}
	if _, err := domain.ParseLabel(string(c.Label)); err != nil {
		return c, false, nil
	}
	return c, true, nil
}

func (r *Redis) SetClassification(ctx context.Context, key string, c domain.Classification) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode classification: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
