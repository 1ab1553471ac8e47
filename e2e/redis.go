package e2e

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	once           sync.Once
	redisContainer *tcredis.RedisContainer
	connStr        string
	startErr       error
	wg             sync.WaitGroup
)

// UseRedis signals that the test is using Redis.
// This will either provision or reuse a Redis container for the test.
// Do not expect a clean state; use a unique stream name per test.
func UseRedis(t *testing.T) *redis.Client {
	t.Helper()

	once.Do(func() {
		ctx := context.Background()
		redisContainer, startErr = tcredis.Run(ctx, "redis:7")
		if startErr != nil {
			return
		}
		connStr, startErr = redisContainer.ConnectionString(ctx)
	})

	if startErr != nil {
		t.Fatalf("failed to start redis container: %v", startErr)
	}
	wg.Add(1)
	t.Cleanup(wg.Done)

	opts, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed to parse redis connection string: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close redis client: %v", err)
		}
	})
	return client
}

func TerminateRedisForE2E() {
	wg.Wait()
	if redisContainer != nil {
		err := redisContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate redis container: %v", err)
		}
	}
}
