package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/logging"
)

// RankEntry is a cached on-demand check result
type RankEntry struct {
	Rank string `json:"rank"`
	RR   int    `json:"rr"`
}

// Cache wraps Redis for short-lived rank check results. All methods are
// nil-safe so the rest of the code need not care whether caching is enabled.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// GetRank retrieves a cached check result, nil on miss
func (c *Cache) GetRank(ctx context.Context, username, hashtag, region string) (*RankEntry, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheDisabled
	}

	raw, err := c.client.Get(ctx, rankKey(username, hashtag, region)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry RankEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached rank: %w", err)
	}
	return &entry, nil
}

// SetRank stores a check result with the given TTL
func (c *Cache) SetRank(ctx context.Context, username, hashtag, region string, entry RankEntry, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rankKey(username, hashtag, region), raw, ttl).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

func rankKey(username, hashtag, region string) string {
	return fmt.Sprintf("valorant:rank:%s/%s#%s", region, username, hashtag)
}

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)
