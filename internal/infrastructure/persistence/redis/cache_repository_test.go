//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/infrastructure/config"
	"github.com/recipewise/server/internal/ports/outbound"
)

func TestCacheRepositoryAgainstRedis(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	client, err := NewClient(ctx, config.RedisConfig{Host: host, Port: port.Int()}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCacheRepository(client, logger)

	_, err = cache.Get(ctx, "query:absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "query:abc", []byte(`{"ingredients":["egg"]}`), time.Minute))

	got, err := cache.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ingredients":["egg"]}`, string(got))

	ttl, err := client.TTL(ctx, keyPrefix+"query:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	exists, err := cache.Exists(ctx, "query:abc")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "query:abc"))
	exists, err = cache.Exists(ctx, "query:abc")
	require.NoError(t, err)
	assert.False(t, exists)
}
