package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedKey = "wayfindar:seed:ar_buildings"

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisAcquireAndRelease(t *testing.T) {
	mr, rdb := setupRedis(t)
	l := NewRedis(rdb, 10*time.Second)

	release, err := l.Acquire(context.Background(), seedKey)
	require.NoError(t, err)
	assert.True(t, mr.Exists(seedKey))
	assert.Equal(t, 10*time.Second, mr.TTL(seedKey))

	release()
	assert.False(t, mr.Exists(seedKey))
}

func TestRedisSecondHolderWaitsForRelease(t *testing.T) {
	_, rdb := setupRedis(t)
	first := NewRedis(rdb, 10*time.Second)
	second := NewRedis(rdb, 10*time.Second)
	second.retry = 10 * time.Millisecond

	release, err := first.Acquire(context.Background(), seedKey)
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r, err := second.Acquire(ctx, seedKey)
		if err != nil {
			acquired <- nil
			return
		}
		acquired <- r
	}()

	select {
	case <-acquired:
		t.Fatal("second locker acquired while the first still held the lock")
	case <-time.After(100 * time.Millisecond):
	}

	release()
	select {
	case r := <-acquired:
		require.NotNil(t, r)
		r()
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never acquired after release")
	}
}

func TestRedisAcquireGivesUpWithContext(t *testing.T) {
	_, rdb := setupRedis(t)
	holder := NewRedis(rdb, 10*time.Second)
	waiter := NewRedis(rdb, 10*time.Second)
	waiter.retry = 10 * time.Millisecond

	release, err := holder.Acquire(context.Background(), seedKey)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = waiter.Acquire(ctx, seedKey)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisExpiredReleaseKeepsNewHolder(t *testing.T) {
	mr, rdb := setupRedis(t)
	stale := NewRedis(rdb, time.Second)
	fresh := NewRedis(rdb, 10*time.Second)

	releaseStale, err := stale.Acquire(context.Background(), seedKey)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(seedKey))

	releaseFresh, err := fresh.Acquire(context.Background(), seedKey)
	require.NoError(t, err)
	token, err := mr.Get(seedKey)
	require.NoError(t, err)

	releaseStale()
	got, err := mr.Get(seedKey)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	releaseFresh()
	assert.False(t, mr.Exists(seedKey))
}

func TestRedisAcquireServerDown(t *testing.T) {
	mr, rdb := setupRedis(t)
	mr.Close()

	_, err := NewRedis(rdb, time.Second).Acquire(context.Background(), seedKey)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}
