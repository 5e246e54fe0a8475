package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// RedisCache guarda o último fetch de odds e manchetes por liga, com TTL.
// Usado pelo dashboard para não estourar a cota do provider a cada render.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache cria o cache de odds/news sobre um cliente Redis.
func NewRedisCache(c *redis.Client) *RedisCache {
	return &RedisCache{Client: c}
}

func oddsKey(leagueKey string) string { return "odds:" + leagueKey }
func newsKey(leagueKey string) string { return "news:" + leagueKey }

// GetOdds retorna o fetch de odds cacheado de uma liga, se ainda válido.
func (r *RedisCache) GetOdds(ctx context.Context, leagueKey string) ([]odds.EventOdds, bool, error) {
	return getJSON[[]odds.EventOdds](ctx, r.Client, oddsKey(leagueKey))
}

// SetOdds cacheia o fetch de odds de uma liga.
func (r *RedisCache) SetOdds(ctx context.Context, leagueKey string, items []odds.EventOdds, ttl time.Duration) error {
	return setJSON(ctx, r.Client, oddsKey(leagueKey), items, ttl)
}

// GetHeadlines retorna as manchetes cacheadas de uma liga, se ainda válidas.
func (r *RedisCache) GetHeadlines(ctx context.Context, leagueKey string) ([]odds.Headline, bool, error) {
	return getJSON[[]odds.Headline](ctx, r.Client, newsKey(leagueKey))
}

// SetHeadlines cacheia as manchetes de uma liga.
func (r *RedisCache) SetHeadlines(ctx context.Context, leagueKey string, items []odds.Headline, ttl time.Duration) error {
	return setJSON(ctx, r.Client, newsKey(leagueKey), items, ttl)
}

// Clear remove as entradas de uma liga (usado no refresh forçado).
func (r *RedisCache) Clear(ctx context.Context, leagueKey string) error {
	return r.Client.Del(ctx, oddsKey(leagueKey), newsKey(leagueKey)).Err()
}

func getJSON[T any](ctx context.Context, c *redis.Client, key string) (T, bool, error) {
	var zero T
	b, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func setJSON(ctx context.Context, c *redis.Client, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl).Err()
}
