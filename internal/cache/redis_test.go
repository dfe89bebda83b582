package cache

import (
	"context"
	"testing"
	"time"
)

func TestRankKey(t *testing.T) {
	tests := []struct {
		name     string
		username string
		hashtag  string
		region   string
		expected string
	}{
		{"simple identity", "SomePlayer", "1234", "na", "valorant:rank:na/SomePlayer#1234"},
		{"eu region", "Other", "XYZ", "eu", "valorant:rank:eu/Other#XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rankKey(tt.username, tt.hashtag, tt.region); got != tt.expected {
				t.Errorf("rankKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDisabledCacheIsNilSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if _, err := c.GetRank(ctx, "a", "b", "na"); err != ErrCacheDisabled {
		t.Errorf("GetRank() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.SetRank(ctx, "a", "b", "na", RankEntry{}, time.Minute); err != ErrCacheDisabled {
		t.Errorf("SetRank() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Health(ctx); err != ErrCacheDisabled {
		t.Errorf("Health() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil cache = %v, want nil", err)
	}
}
