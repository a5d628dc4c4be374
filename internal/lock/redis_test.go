package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLock(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis, *test.Hook) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger, hook := test.NewNullLogger()
	r := NewRedis(client, ttl, logger)
	r.retry = time.Millisecond
	return r, mr, hook
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	// Arrange
	r, mr, _ := setupRedisLock(t, time.Second)

	// Act
	unlock, err := r.Lock(context.Background(), "card:1")

	// Assert
	require.NoError(t, err)
	assert.True(t, mr.Exists("boardflow:lock:card:1"))
	assert.Equal(t, time.Second, mr.TTL("boardflow:lock:card:1"))

	unlock()
	assert.False(t, mr.Exists("boardflow:lock:card:1"))
}

func TestRedis_ContendedLockWaitsForRelease(t *testing.T) {
	// Arrange
	r, _, _ := setupRedisLock(t, 2*time.Second)
	unlock, err := r.Lock(context.Background(), "card:1")
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		second, err := r.Lock(context.Background(), "card:1")
		if assert.NoError(t, err) {
			acquired <- second
		}
	}()

	// Act
	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(30 * time.Millisecond):
	}
	unlock()

	// Assert
	select {
	case second := <-acquired:
		second()
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestRedis_TimesOut(t *testing.T) {
	// Arrange
	r, _, _ := setupRedisLock(t, 40*time.Millisecond)
	unlock, err := r.Lock(context.Background(), "card:1")
	require.NoError(t, err)
	defer unlock()

	// Act
	_, err = r.Lock(context.Background(), "card:1")

	// Assert
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedis_CancelledWhileWaiting(t *testing.T) {
	r, _, _ := setupRedisLock(t, 5*time.Second)
	unlock, err := r.Lock(context.Background(), "card:1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err = r.Lock(ctx, "card:1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedis_ReleaseKeepsAnotherOwnersLease(t *testing.T) {
	// Arrange
	r, mr, _ := setupRedisLock(t, time.Second)
	unlock, err := r.Lock(context.Background(), "card:1")
	require.NoError(t, err)

	// The lease expired and another instance took it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("boardflow:lock:card:1", "other-instance"))

	// Act
	unlock()

	// Assert
	got, err := mr.Get("boardflow:lock:card:1")
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got)
}

func TestRedis_ReleaseFailureIsLogged(t *testing.T) {
	// Arrange
	r, mr, hook := setupRedisLock(t, time.Second)
	unlock, err := r.Lock(context.Background(), "card:1")
	require.NoError(t, err)
	mr.Close()

	// Act
	unlock()

	// Assert
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "failed to release lock", entry.Message)
	assert.Equal(t, "boardflow:lock:card:1", entry.Data["key"])
}
