// Package httpapi is the HTTP surface of the authentication subsystem:
// external login, token refresh, logout, revocation, and the pipeline
// middleware guarding the rest of the API.
package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/models"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/oauth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/services"
)

// AuthService is the business logic behind the handlers.
type AuthService interface {
	CompleteExternalLogin(ctx context.Context, id services.ExternalIdentity) (*services.TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string) (*services.TokenPair, error)
	Logout(ctx context.Context, rawRefresh string) error
	RevokeAll(ctx context.Context, userID int64) (int, error)
	FindUser(ctx context.Context, email string) (*models.User, error)
}

// IdentityProvider is the external login collaborator.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (oauth.Profile, error)
}

type Handler struct {
	svc     AuthService
	idp     IdentityProvider
	cookies CookieConfig
	logger  logging.Logger
}

func NewHandler(svc AuthService, idp IdentityProvider, cookies CookieConfig, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Handler{svc: svc, idp: idp, cookies: cookies, logger: logger.With("module", "http_handler")}
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

type revokedResponse struct {
	Revoked int `json:"revoked"`
}

// deliver hands a fresh pair to the client: refresh token in the cookie,
// access token in the body.
func (h *Handler) deliver(w http.ResponseWriter, pair *services.TokenPair) {
	h.cookies.setRefreshCookie(w, pair.Refresh.Raw, pair.Refresh.Lifetime())
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.Access.Raw,
		TokenType:   "Bearer",
		ExpiresIn:   int64(pair.Access.Lifetime() / time.Second),
	})
}

// LoginStart redirects to the identity provider with a fresh state value.
func (h *Handler) LoginStart(w http.ResponseWriter, r *http.Request) {
	state, err := common.MakeRandURLString(32)
	if err != nil {
		h.logger.Error(r.Context(), "state generation failed", "error", err)
		writeMappedError(w, err)
		return
	}
	h.cookies.setStateCookie(w, state)
	http.Redirect(w, r, h.idp.AuthCodeURL(state), http.StatusFound)
}

// LoginCallback completes the external login.
func (h *Handler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		h.logger.Warn(ctx, "identity provider returned error", "error", e)
		writeError(w, http.StatusUnauthorized, "LOGIN_FAILED", "external login failed")
		return
	}

	c, err := r.Cookie(common.OAuthStateCookieName)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "INVALID_OAUTH_STATE", "login state mismatch")
		return
	}
	h.cookies.clearStateCookie(w)

	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CODE", "authorization code missing")
		return
	}

	prof, err := h.idp.Identify(ctx, code)
	if err != nil {
		h.logger.Warn(ctx, "identity lookup failed", "error", err)
		writeMappedError(w, err)
		return
	}

	pair, err := h.svc.CompleteExternalLogin(ctx, services.ExternalIdentity{
		Email:     prof.Email,
		Name:      prof.Name,
		AvatarURL: prof.Picture,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	h.deliver(w, pair)
}

// Refresh rotates the refresh cookie and returns a new access token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusUnauthorized, "REFRESH_TOKEN_MISSING", "refresh token cookie missing")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), c.Value)
	if err != nil {
		if m := mapError(err); m.status == http.StatusUnauthorized {
			h.cookies.clearRefreshCookie(w)
		}
		writeMappedError(w, err)
		return
	}

	h.deliver(w, pair)
}

// Logout revokes the session in the refresh cookie and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clearRefreshCookie(w)

	c, err := r.Cookie(common.RefreshTokenCookieName)
	if err == nil {
		if err := h.svc.Logout(r.Context(), c.Value); err != nil {
			h.logger.Error(r.Context(), "logout failed", "error", err)
			writeMappedError(w, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevokeAll ends every refresh session of the caller.
func (h *Handler) RevokeAll(w http.ResponseWriter, r *http.Request) {
	p, _ := authn.PrincipalFromContext(r.Context())

	n, err := h.svc.RevokeAll(r.Context(), p.UserID)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	h.cookies.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, revokedResponse{Revoked: n})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := authn.PrincipalFromContext(r.Context())

	writeJSON(w, http.StatusOK, userResponse{
		ID:        p.User.ID,
		Email:     p.User.Email,
		Name:      p.User.Name,
		AvatarURL: p.User.AvatarURL,
		Role:      p.Role,
	})
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
