package sessions

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
)

// DefaultRetryDelay is the pause before the single liveness retry.
const DefaultRetryDelay = 50 * time.Millisecond

// Checker answers whether a refresh session is live. It separates "confirmed
// absent" (false, nil) from "could not confirm" (false, error): a transient
// store error is retried once and then surfaced, never read as a revocation.
type Checker struct {
	store  Store
	delay  time.Duration
	logger logging.Logger
}

func NewChecker(store Store, delay time.Duration, logger logging.Logger) *Checker {
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Checker{store: store, delay: delay, logger: logger.With("module", "session_checker")}
}

func (c *Checker) IsLive(ctx context.Context, userID int64, tokenID string) (bool, error) {
	attempt := 0
	live, err := retry.DoValue(ctx, retry.WithMaxRetries(1, retry.NewConstant(c.delay)),
		func(ctx context.Context) (bool, error) {
			attempt++
			ok, err := c.store.Exists(ctx, userID, tokenID)
			if err != nil {
				c.logger.Warn(ctx, "liveness check failed", "user_id", userID, "attempt", attempt, "error", err)
				return false, retry.RetryableError(err)
			}
			return ok, nil
		})
	if err != nil {
		if _, ok := auth.KindOf(err); !ok {
			err = auth.NewError(auth.KindStoreUnavailable, err)
		}
		return false, err
	}
	return live, nil
}
