package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baharkarakas/betzone-api/internal/testutil"
)

func TestMemoryBurstThenDeny(t *testing.T) {
	m := NewMemory(1, 3)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := m.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _ = m.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "refilled after a second")
}

func TestMemorySweepDropsIdleKeys(t *testing.T) {
	m := NewMemory(1, 1)
	now := time.Now()
	m.now = func() time.Time { return now }
	_, _ = m.Allow(context.Background(), "a")
	require.Equal(t, 1, m.size())

	now = now.Add(11 * time.Minute)
	m.sweep()
	assert.Equal(t, 0, m.size())
}

func TestMemoryStartStop(t *testing.T) {
	m := NewMemory(1, 1)
	m.Start(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestRedisFixedWindow(t *testing.T) {
	testutil.RequireDocker(t)
	ctx := context.Background()

	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForLog("Ready to accept connections").WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedis(rdb, "rl:test", 2, time.Minute)
	fixed := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	fixed = fixed.Add(time.Minute)
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "new window")
}
