package sessions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
)

var issuedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]Option{WithClock(func() time.Time { return issuedAt })}, opts...)
	return NewRedisStore(client, opts...), mr
}

func TestRedisStore_StoreExistsRevoke(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.Store(ctx, 7, "tid-1", time.Hour))

	key := "refresh_token:7:tid-1"
	assert.Equal(t, key, s.Key(7, "tid-1"))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
	v, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T12:00:00Z", v)

	ok, err := s.Exists(ctx, 7, "tid-1")
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := s.RevokeOne(ctx, 7, "tid-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	ok, err = s.Exists(ctx, 7, "tid-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// absent key
	deleted, err = s.RevokeOne(ctx, 7, "tid-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = s.RevokeOne(ctx, 99, "never")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisStore_Store_IsUpsert(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.Store(ctx, 7, "tid", time.Minute))
	require.NoError(t, s.Store(ctx, 7, "tid", time.Hour))

	assert.Equal(t, time.Hour, mr.TTL("refresh_token:7:tid"))
	assert.Len(t, mr.Keys(), 1)
}

func TestRedisStore_Store_Expires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.Store(ctx, 7, "tid", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	ok, err := s.Exists(ctx, 7, "tid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Store_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	assert.Error(t, s.Store(ctx, 7, "", time.Minute))
	assert.Error(t, s.Store(ctx, 7, "tid", 0))
	assert.Error(t, s.Store(ctx, 7, "tid", -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, WithPrefix("rt"))

	require.NoError(t, s.Store(ctx, 3, "abc", time.Minute))
	assert.True(t, mr.Exists("rt:3:abc"))
}

func TestRedisStore_RevokeAll(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, WithScanBatch(3))

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Store(ctx, 7, fmt.Sprintf("tid-%d", i), time.Hour))
	}
	// other users and unrelated keys stay
	require.NoError(t, s.Store(ctx, 70, "tid-x", time.Hour))
	require.NoError(t, s.Store(ctx, 8, "tid-y", time.Hour))
	require.NoError(t, mr.Set("unrelated:7:key", "v"))

	n, err := s.RevokeAll(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	for i := 0; i < 10; i++ {
		ok, err := s.Exists(ctx, 7, fmt.Sprintf("tid-%d", i))
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, mr.Exists("refresh_token:70:tid-x"))
	assert.True(t, mr.Exists("refresh_token:8:tid-y"))
	assert.True(t, mr.Exists("unrelated:7:key"))
}

func TestRedisStore_RevokeAll_NoSessions(t *testing.T) {
	s, _ := newTestStore(t)

	n, err := s.RevokeAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_BackendErrors(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	mr.SetError("ERR backend broken")

	err := s.Store(ctx, 7, "tid", time.Minute)
	assert.True(t, errors.Is(err, auth.ErrStoreUnavailable), "got %v", err)

	_, err = s.Exists(ctx, 7, "tid")
	assert.True(t, errors.Is(err, auth.ErrStoreUnavailable))

	_, err = s.RevokeOne(ctx, 7, "tid")
	assert.True(t, errors.Is(err, auth.ErrStoreUnavailable))

	_, err = s.RevokeAll(ctx, 7)
	assert.True(t, errors.Is(err, auth.ErrStoreUnavailable))
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"refresh_token", "refresh_token"},
		{"a*b", `a\*b`},
		{"q?[x]", `q\?\[x\]`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeGlob(tt.in))
	}
}
