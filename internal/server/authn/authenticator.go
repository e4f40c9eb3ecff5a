package authn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
)

// UserLookup resolves a token subject to a live account. Absent accounts are
// reported as common.ErrorNotFound.
type UserLookup interface {
	FindUser(ctx context.Context, email string) (*models.User, error)
}

// Authenticator runs the per-request pipeline:
//
//	no token          -> anonymous (nil, nil)
//	token fails decode -> Expired | Malformed | BadSignature
//	not an ACCESS token -> WrongTokenKind
//	account gone       -> PrincipalNotFound
//	otherwise          -> *Principal
//
// Access tokens are not checked against the session store, so revocation
// takes effect for API calls once outstanding access tokens expire.
type Authenticator struct {
	validator *auth.Validator
	users     UserLookup
	logger    logging.Logger
}

func NewAuthenticator(v *auth.Validator, users UserLookup, logger logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Authenticator{validator: v, users: users, logger: logger.With("module", "authenticator")}
}

// AuthenticateRequest extracts the token from r and authenticates it.
func (a *Authenticator) AuthenticateRequest(r *http.Request) (*Principal, error) {
	raw, ok := TokenFromRequest(r)
	if !ok {
		return nil, nil
	}
	return a.Authenticate(r.Context(), raw)
}

// Authenticate checks a raw token. An empty raw token is anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, nil
	}

	tok, err := a.validator.Verify(raw)
	if err != nil {
		return nil, err
	}
	if tok.Type != auth.TypeAccess {
		return nil, auth.NewError(auth.KindWrongTokenKind, fmt.Errorf("got %s token", tok.Type))
	}

	user, err := a.users.FindUser(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, auth.NewError(auth.KindPrincipalNotFound, err)
		}
		return nil, fmt.Errorf("error loading principal: %w", err)
	}
	// The email may have been re-registered to a different account since issue.
	if user.ID != tok.UserID {
		return nil, auth.NewError(auth.KindPrincipalNotFound,
			fmt.Errorf("subject now belongs to user %d", user.ID))
	}

	a.logger.Debug(ctx, "authenticated", "user_id", user.ID)
	return &Principal{
		UserID:  user.ID,
		Subject: tok.Subject,
		Role:    tok.Role,
		TokenID: tok.TokenID,
		User:    user,
	}, nil
}

// TokenFromRequest returns the bearer token from the Authorization header or,
// failing that, the access token cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	if raw, ok := BearerToken(r.Header.Get(common.AuthorizationHeaderName)); ok {
		return raw, true
	}
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// BearerToken parses an Authorization header value of the form "Bearer <t>".
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
	return raw, raw != ""
}
