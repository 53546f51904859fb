package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCachedGateway_NilClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	g := NewCachedGateway(m, nil, time.Minute, quietLogger())

	require.NoError(t, g.Upsert(ctx, Inventory, []Row{{"id": "p1", "owner_id": "o"}}))
	rows, err := g.Select(ctx, Inventory, "o")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, g.Delete(ctx, Inventory, "o", []string{"p1"}))
	rows, err = g.Select(ctx, Inventory, "o")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCachedGateway_ReadThroughAndInvalidate(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	owner := "cache-test-" + time.Now().Format("150405.000000")
	key := cacheKey(Customers, owner)
	t.Cleanup(func() { client.Del(ctx, key) })

	m := NewMemoryStore()
	g := NewCachedGateway(m, client, time.Minute, quietLogger())

	require.NoError(t, g.Upsert(ctx, Customers, []Row{{"id": "c1", "owner_id": owner, "name": "Rina"}}))
	rows, err := g.Select(ctx, Customers, owner)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	exists, err := client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "select fills the cache")

	// A write behind the cache's back is not visible until invalidation.
	require.NoError(t, m.Upsert(ctx, Customers, []Row{{"id": "c2", "owner_id": owner}}))
	rows, err = g.Select(ctx, Customers, owner)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, g.Delete(ctx, Customers, owner, []string{"c1"}))
	exists, err = client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	rows, err = g.Select(ctx, Customers, owner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c2", rows[0].ID())
}
