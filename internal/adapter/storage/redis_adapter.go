package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// RedisAdapter keeps the cart in a single Redis string under prefix+key.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, prefix, key string) *RedisAdapter {
	return &RedisAdapter{client: client, key: prefix + key}
}

func (r *RedisAdapter) LoadCart(ctx context.Context) (domain.CartState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewCartState(), nil
	}
	if err != nil {
		return domain.CartState{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.CartState{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return state, nil
}

func (r *RedisAdapter) SaveCart(ctx context.Context, state domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

var _ port.CartStorage = (*RedisAdapter)(nil)
