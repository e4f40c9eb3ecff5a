package httpapi

import (
	"net/http"
	"time"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
)

// CookieConfig controls the attributes of cookies set by the API.
type CookieConfig struct {
	Secure bool
	Domain string
}

const stateCookieTTL = 10 * time.Minute

// setRefreshCookie is the only way a refresh token leaves the server.
func (c CookieConfig) setRefreshCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clearRefreshCookie(w http.ResponseWriter) {
	c.expire(w, common.RefreshTokenCookieName, "/")
}

func (c CookieConfig) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.OAuthStateCookieName,
		Value:    state,
		Path:     "/login/oauth2",
		Domain:   c.Domain,
		MaxAge:   int(stateCookieTTL / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clearStateCookie(w http.ResponseWriter) {
	c.expire(w, common.OAuthStateCookieName, "/login/oauth2")
}

func (c CookieConfig) expire(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
