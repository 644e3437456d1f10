package runlock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/supplymap/pkg/errors"
)

func TestLocalExcludes(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "supplymap:products")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "supplymap:products")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, errors.ErrLocked)

	other, err := l.Lock(ctx, "supplymap:other")
	require.NoError(t, err, "distinct names do not contend")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), ErrNotHeld)
}

func TestLocalHandsOver(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "name")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		next, err := l.Lock(ctx, "name")
		if err == nil {
			_ = next(ctx)
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, unlock(ctx))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func dialTest(t *testing.T, opts ...Option) *Redis {
	t.Helper()
	url := os.Getenv("SUPPLYMAP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SUPPLYMAP_TEST_REDIS_URL not set")
	}
	r, err := Dial(context.Background(), url, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisLock(t *testing.T) {
	r := dialTest(t, WithTTL(5*time.Second), WithRetry(5*time.Millisecond))
	ctx := context.Background()

	name := "supplymap:test:" + uuid.NewString()
	unlock, err := r.Lock(ctx, name)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = r.Lock(waitCtx, name)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, errors.ErrLocked)

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), ErrNotHeld)

	again, err := r.Lock(ctx, name)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLockOutlivesTTL(t *testing.T) {
	r := dialTest(t, WithTTL(150*time.Millisecond), WithRetry(5*time.Millisecond))
	ctx := context.Background()

	name := "supplymap:test:" + uuid.NewString()
	unlock, err := r.Lock(ctx, name)
	require.NoError(t, err)

	time.Sleep(500 * time.Millisecond)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = r.Lock(waitCtx, name)
	assert.ErrorIs(t, err, errors.ErrLocked, "a held lock stays held past its TTL")

	require.NoError(t, unlock(ctx))

	ttl, err := r.client.PTTL(ctx, name).Result()
	require.NoError(t, err)
	assert.Negative(t, ttl, "released key is gone")
}
