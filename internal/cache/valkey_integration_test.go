//go:build integration

package cache_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestValkey(t *testing.T) {
	ctx := t.Context()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "valkey/valkey:8-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	c, err := cache.New(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	_, err = c.Get(ctx, "geocode:nowhere")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "geocode:Tokyo, Japan", []byte(`{"lat":35.6762,"lng":139.6503}`), time.Minute))

	got, err := c.Get(ctx, "geocode:Tokyo, Japan")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":35.6762,"lng":139.6503}`, string(got))

	require.NoError(t, c.Set(ctx, "geocode:Paris, France", []byte(`{}`), 0))
	_, err = c.Get(ctx, "geocode:Paris, France")
	require.NoError(t, err)
}
