// Package common contains shared constants and sentinel errors used across
// SecondBrain server components.
package common

const (
	// AuthorizationHeaderName carries "Bearer <access token>" on HTTP requests
	// and the same value in gRPC metadata.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// AccessTokenCookieName is the cookie fallback for the access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the HttpOnly cookie holding the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// OAuthStateCookieName holds the anti-CSRF state during the provider redirect.
	OAuthStateCookieName = "oauth2_state"

	// DefaultRole is the single authorization label assigned to every user.
	DefaultRole = "ROLE_USER"
)
