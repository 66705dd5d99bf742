package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCacheUnavailableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisCache[string](client, "test:", time.Minute)
	c.Set("a", "value")
	if v, ok := c.Get("a"); ok {
		t.Errorf("Get() = %q, true; want miss when Redis is unreachable", v)
	}
	if got := c.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := c.key("a"); got != "test:a" {
		t.Errorf("key() = %q, want test:a", got)
	}
}

func TestNewRedisClientFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewRedisClient(ctx, "127.0.0.1:1"); err == nil {
		t.Error("NewRedisClient() error = nil for unreachable address")
	}
}
