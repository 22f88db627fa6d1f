// Package testutil provides shared helpers for integration-leaning tests.
package testutil

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB is the subset of *testing.T the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Cleanup(f func())
	Logf(format string, args ...interface{})
}

// SetupTestRedis returns a Redis client for tests, skipping the test when no
// Redis is reachable. Set REDIS_ADDR to point at a non-default instance.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client: %v", cerr)
		}
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.FlushDB(ctx).Err(); err != nil {
			t.Logf("flush test redis db: %v", err)
		}
		if err := client.Close(); err != nil {
			t.Logf("close redis client: %v", err)
		}
	})

	return client
}

// FixedTimeFunc returns a clock stuck at the given instant.
func FixedTimeFunc(at time.Time) func() time.Time {
	return func() time.Time {
		return at
	}
}
