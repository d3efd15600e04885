//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"edutrack/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, time.Minute)
	training := &models.Training{Code: "TRNG-202610190900-ABCDEF", Name: "Network Fundamentals", Fee: 100000, Graduates: 3, Rating: 4.33}
	training.ID = 42

	_, ok := c.Get(ctx, 42)
	assert.False(t, ok)

	c.Set(ctx, training)
	got, ok := c.Get(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, training.Name, got.Name)
	assert.Equal(t, int64(3), got.Graduates)
	assert.InDelta(t, 4.33, got.Rating, 0.001)

	ttl, err := client.TTL(ctx, "training:42").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	c.Invalidate(ctx, 42)
	_, ok = c.Get(ctx, 42)
	assert.False(t, ok)
}
