//go:build integration

package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestRedisStore_Integration_RoundTrip(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	store := NewRedisStore(client, WithTTL(time.Minute))
	ctx := context.Background()

	key := Key{Endpoint: "/videos", Params: url.Values{"category": []string{"ai"}}}
	if err := store.Set(ctx, key, []byte("payload")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Get() = %s, want payload", got)
	}

	ttl, err := client.TTL(ctx, redisKey(key)).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("redis TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRedisStore_Integration_ClearManyKeys(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	store := NewRedisStore(client)
	ctx := context.Background()

	// More than one SCAN/DEL batch
	n := clearBatchSize*2 + 17
	for i := 0; i < n; i++ {
		key := Key{Endpoint: "/videos", Params: url.Values{"page": []string{fmt.Sprint(i)}}}
		if err := store.Set(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Set %d failed: %v", i, err)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	keys, err := client.Keys(ctx, redisNamespace+"*").Result()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("%d keys left after Clear", len(keys))
	}

	_, err = store.Get(ctx, Key{Endpoint: "/videos", Params: url.Values{"page": []string{"0"}}})
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after Clear, got %v", err)
	}
}
