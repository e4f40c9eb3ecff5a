package sessions

import (
	"context"
	"time"
)

// Store is the refresh-session store.
//
// Every method is atomic per key on the Redis side, so callers need no
// locking. Backend failures are *auth.Error values of kind
// KindStoreUnavailable.
type Store interface {
	// Store creates or replaces the session and sets its TTL.
	Store(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	// Exists reports whether the session is still recorded.
	Exists(ctx context.Context, userID int64, tokenID string) (bool, error)
	// RevokeOne deletes the session and reports whether it was present.
	// Deleting an absent session is not an error. Exactly one of any number
	// of concurrent callers for the same session sees true.
	RevokeOne(ctx context.Context, userID int64, tokenID string) (bool, error)
	// RevokeAll deletes every session of the user and returns how many were deleted.
	RevokeAll(ctx context.Context, userID int64) (int, error)
}
