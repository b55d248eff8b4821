package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_NilIsDisabled(t *testing.T) {
	var c *Client
	ctx := context.Background()

	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)
	c.Delete(ctx, "k")
	assert.Zero(t, c.Version(ctx, "v"))
	assert.False(t, c.Bump(ctx, "v", time.Minute))
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestClient_UnreachableRedisFailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c.SetJSON(ctx, "stats", map[string]int{"total": 3}, time.Minute)

	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "stats", &out))
	assert.Nil(t, out)
	c.Delete(ctx, "stats")
	assert.False(t, c.Bump(ctx, "stats:ver", time.Minute))
	assert.Zero(t, c.Version(ctx, "stats:ver"))
	assert.Error(t, c.Ping(ctx))
}
