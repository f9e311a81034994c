package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

const generationKey = "stats:generation"

// Redis is a StatsCache shared by every API instance
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the cache server. A failed ping is logged and the
// cache keeps working in degraded mode: every lookup is a miss.
func NewRedis(cfg *config.CacheConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Could not connect to stats cache", "addr", cfg.Addr, "error", err)
	} else {
		slog.Info("Connected to stats cache", "addr", cfg.Addr)
	}

	return &Redis{client: client, ttl: cfg.TTL}
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Redis) Get(ctx context.Context, filter models.StatsFilter) (*models.DashboardStats, string, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		slog.Warn("Stats cache unavailable", "error", err)
		return nil, "", false
	}

	slot := slotKey(gen, filter)
	raw, err := c.client.Get(ctx, slot).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Stats cache read failed", "key", slot, "error", err)
		}
		return nil, slot, false
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		slog.Warn("Discarding corrupt stats cache entry", "key", slot, "error", err)
		return nil, slot, false
	}
	return &stats, slot, true
}

func (c *Redis) Put(ctx context.Context, slot string, stats *models.DashboardStats) {
	if slot == "" || stats == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		slog.Warn("Failed to encode stats for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, slot, raw, c.ttl).Err(); err != nil {
		slog.Warn("Stats cache write failed", "key", slot, "error", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (c *Redis) Close() error {
	return c.client.Close()
}
