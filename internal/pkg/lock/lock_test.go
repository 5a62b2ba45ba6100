package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, wait time.Duration) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	l := NewRedisLocker(client, 5*time.Second, wait)
	l.retry = time.Millisecond
	l.newToken = func() string { return "token-1" }
	return l, mock
}

func TestAcquireAndRelease(t *testing.T) {
	l, mock := newTestLocker(t, 0)
	ctx := context.Background()

	mock.ExpectSetNX("lock:conversation:1:2:3", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:conversation:1:2:3"}, "token-1").SetVal(int64(1))

	release, err := l.Acquire(ctx, "conversation:1:2:3")
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireRetriesUntilFree(t *testing.T) {
	l, mock := newTestLocker(t, time.Second)

	mock.ExpectSetNX("lock:k", "token-1", 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:k", "token-1", 5*time.Second).SetVal(true)

	_, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireGivesUpAfterWait(t *testing.T) {
	l, mock := newTestLocker(t, 0)

	mock.ExpectSetNX("lock:k", "token-1", 5*time.Second).SetVal(false)

	_, err := l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestAcquireSurfacesRedisErrors(t *testing.T) {
	l, mock := newTestLocker(t, time.Second)

	mock.ExpectSetNX("lock:k", "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Acquire(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "anything")
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}
