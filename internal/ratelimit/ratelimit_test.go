package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(Config{Events: 3, Interval: 10 * time.Second})
	m.now = func() time.Time { return clock }

	for i := range 3 {
		ok, err := m.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
		clock = clock.Add(time.Second)
	}
	ok, _ := m.Allow(ctx, "u1")
	assert.False(t, ok, "fourth attempt inside the window")

	ok, _ = m.Allow(ctx, "u2")
	assert.True(t, ok, "keys are independent")

	clock = clock.Add(8 * time.Second)
	ok, _ = m.Allow(ctx, "u1")
	assert.True(t, ok, "oldest attempt slid out")
}

func TestMemory_Prune(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(Config{Events: 1, Interval: time.Second})
	m.now = func() time.Time { return clock }

	_, _ = m.Allow(ctx, "a")
	clock = clock.Add(2 * time.Second)
	_, _ = m.Allow(ctx, "b")
	m.Prune()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.NotContains(t, m.history, "a")
	assert.Contains(t, m.history, "b")
}

func TestMemory_RunZeroInterval(t *testing.T) {
	m := NewMemory(Config{Events: 5})
	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a zero interval")
	}
}

func TestRedis_SlidingWindow(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	prefix := "test:huddle:ratelimit:"
	defer client.Del(ctx, prefix+"u1", prefix+"u1:counter")

	l := NewRedis(client, Config{Events: 5, Interval: time.Minute}, prefix)
	for i := range 5 {
		ok, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnlimited(t *testing.T) {
	ok, err := Unlimited{}.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
}
