// Package authn turns a presented access token into a request-scoped
// Principal. It is shared by the HTTP middleware and the gRPC interceptor.
package authn

import (
	"context"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
)

// Principal is the authenticated caller of one request. It is built fresh per
// request and never persisted.
type Principal struct {
	UserID  int64
	Subject string
	Role    string
	TokenID string
	User    *models.User
}

type contextKey int

const principalKey contextKey = iota

// ContextWithPrincipal attaches p to ctx.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's Principal, if one was attached.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
