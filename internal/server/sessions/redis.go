package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
)

const (
	DefaultPrefix    = "refresh_token"
	DefaultScanBatch = 100
	DefaultTimeout   = 2 * time.Second
)

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client  redis.Cmdable
	prefix  string
	batch   int64
	timeout time.Duration
	now     func() time.Time
	logger  logging.Logger
}

var _ Store = (*RedisStore)(nil)

type Option func(*RedisStore)

func WithPrefix(prefix string) Option {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithScanBatch sets the SCAN COUNT hint used by RevokeAll.
func WithScanBatch(n int) Option {
	return func(s *RedisStore) {
		if n > 0 {
			s.batch = int64(n)
		}
	}
}

// WithTimeout bounds every individual Redis call.
func WithTimeout(d time.Duration) Option {
	return func(s *RedisStore) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *RedisStore) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *RedisStore) { s.logger = l }
}

func NewRedisStore(client redis.Cmdable, opts ...Option) *RedisStore {
	s := &RedisStore{
		client:  client,
		prefix:  DefaultPrefix,
		batch:   DefaultScanBatch,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logging.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "session_store")
	return s
}

// Key returns the Redis key of a session.
func (s *RedisStore) Key(userID int64, tokenID string) string {
	return s.prefix + ":" + strconv.FormatInt(userID, 10) + ":" + tokenID
}

func (s *RedisStore) userPattern(userID int64) string {
	return escapeGlob(s.prefix) + ":" + strconv.FormatInt(userID, 10) + ":*"
}

func (s *RedisStore) Store(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("store session: empty token id")
	}
	if ttl <= 0 {
		return fmt.Errorf("store session: non-positive ttl %s", ttl)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	issued := s.now().UTC().Format(time.RFC3339)
	if err := s.client.Set(ctx, s.Key(userID, tokenID), issued, ttl).Err(); err != nil {
		s.logger.Error(ctx, "store session failed", "user_id", userID, "token_id", tokenID, "error", err)
		return auth.NewError(auth.KindStoreUnavailable, err)
	}

	s.logger.Debug(ctx, "session stored", "user_id", userID, "token_id", tokenID, "ttl", ttl.String())
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, userID int64, tokenID string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.client.Exists(ctx, s.Key(userID, tokenID)).Result()
	if err != nil {
		return false, auth.NewError(auth.KindStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisStore) RevokeOne(ctx context.Context, userID int64, tokenID string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.client.Del(ctx, s.Key(userID, tokenID)).Result()
	if err != nil {
		return false, auth.NewError(auth.KindStoreUnavailable, err)
	}

	s.logger.Debug(ctx, "session revoked", "user_id", userID, "token_id", tokenID, "deleted", n)
	return n > 0, nil
}

// RevokeAll collects the user's keys with SCAN, a page at a time, then
// deletes them in pages of the same size. It never issues KEYS. Sessions
// stored after the scan has passed their slot survive.
//
// Keys are deleted only after the scan completes: SCAN may repeat keys, and
// deleting mid-iteration lets some servers skip keys.
func (s *RedisStore) RevokeAll(ctx context.Context, userID int64) (int, error) {
	pattern := s.userPattern(userID)

	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.scan(ctx, cursor, pattern)
		if err != nil {
			return 0, auth.NewError(auth.KindStoreUnavailable, err)
		}
		for _, k := range page {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	deleted := 0
	for start := 0; start < len(keys); start += int(s.batch) {
		end := min(start+int(s.batch), len(keys))
		n, err := s.del(ctx, keys[start:end])
		if err != nil {
			return deleted, auth.NewError(auth.KindStoreUnavailable, err)
		}
		deleted += int(n)
	}

	s.logger.Info(ctx, "all sessions revoked", "user_id", userID, "deleted", deleted)
	return deleted, nil
}

func (s *RedisStore) scan(ctx context.Context, cursor uint64, pattern string) ([]string, uint64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.Scan(ctx, cursor, pattern, s.batch).Result()
}

func (s *RedisStore) del(ctx context.Context, keys []string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.Del(ctx, keys...).Result()
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
