package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLockerExclusive(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "test:lock", time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx, 3)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:3"))

	_, err = l.Acquire(ctx, 3)
	assert.ErrorIs(t, err, ErrExamLocked)

	other, err := l.Acquire(ctx, 4)
	require.NoError(t, err, "different exams do not block each other")
	other()

	release()
	release()
	assert.False(t, mr.Exists("test:lock:3"))

	again, err := l.Acquire(ctx, 3)
	require.NoError(t, err)
	again()
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "test:lock", time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, 9)
	require.NoError(t, err)

	// TTL ran out and someone else took the exam
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:9", "someone-else"))

	release()
	got, err := mr.Get("test:lock:9")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, "", 5*time.Second)
	ctx := context.Background()

	_, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	mr.FastForward(6 * time.Second)

	release, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	release()
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	_, err = l.Acquire(ctx, 1)
	assert.ErrorIs(t, err, ErrExamLocked)

	r2, err := l.Acquire(ctx, 2)
	require.NoError(t, err)
	r2()

	release()
	release()
	r3, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	r3()
}
