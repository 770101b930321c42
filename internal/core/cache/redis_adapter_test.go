package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://"+mr.Addr(), WithPrefix("gel:"), WithTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	value := []byte(`{"ok":true}`)
	err := adapter.Set(ctx, "HX123", value, 10*time.Second)
	assert.NoError(t, err)

	retrievedValue, err := adapter.Get(ctx, "HX123")
	assert.NoError(t, err)
	assert.Equal(t, value, retrievedValue)

	// Keys are namespaced
	assert.True(t, mr.Exists("gel:HX123"))
	assert.False(t, mr.Exists("HX123"))
}

func TestRedisAdapter_GetNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "non_existent_key")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "non_existent_key")
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "delete_test", []byte("value"), 0)
	require.NoError(t, err)

	err = adapter.Delete(ctx, "delete_test")
	assert.NoError(t, err)

	_, err = adapter.Get(ctx, "delete_test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "ttl_test", []byte("expires_soon"), 1*time.Second)
	require.NoError(t, err)

	_, err = adapter.Get(ctx, "ttl_test")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "ttl_test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, mr := newTestAdapter(t)

	assert.NoError(t, adapter.Ping(context.Background()))

	mr.Close()
	assert.Error(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_ServerDown(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	mr.Close()

	_, err := adapter.Get(context.Background(), "HX123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestRedisAdapter_TimeoutOptions(t *testing.T) {
	adapter, err := NewRedisAdapter("redis://localhost:6379/0", WithTimeout(250*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	opts := adapter.client.Options()
	assert.Equal(t, 250*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)
	assert.True(t, opts.ContextTimeoutEnabled)
	assert.Equal(t, "HX1", adapter.key("HX1"))
}

// TestRedisAdapter_StalledServer verifies a server that accepts but never
// answers cannot hold a caller past the configured timeout.
func TestRedisAdapter_StalledServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	conns := make(chan net.Conn, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				close(conns)
				return
			}
			conns <- conn
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		for conn := range conns {
			conn.Close()
		}
	})

	adapter, err := NewRedisAdapter("redis://"+ln.Addr().String(), WithTimeout(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	start := time.Now()
	_, err = adapter.Get(context.Background(), "HX123")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Less(t, elapsed, 2*time.Second)
}
