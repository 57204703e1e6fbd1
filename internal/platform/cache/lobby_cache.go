package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Chaves das visões de lobby cacheadas no Redis
const (
	KeyTournaments = "lobby:tournaments"
	KeyRooms       = "lobby:rooms"
	KeyLeaderboard = "lobby:leaderboard"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, key, b, ttl).Err()
}

// Invalidate remove as chaves; leituras seguintes vão direto ao banco
// (disciplina invalidate-and-refetch, nunca patch local)
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	return c.R.Del(ctx, keys...).Err()
}
