package auth

import "time"

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TypeAccess  TokenType = "ACCESS"
	TypeRefresh TokenType = "REFRESH"
)

func (t TokenType) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Token is the decoded claim set. Tokens are values: a new Token replaces an
// old one, nothing mutates an issued Token.
type Token struct {
	Subject   string
	UserID    int64
	Role      string
	Type      TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime is ExpiresAt - IssuedAt.
func (t Token) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// Remaining is the time left before expiry as of now, floored at zero.
func (t Token) Remaining(now time.Time) time.Duration {
	if d := t.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Identity is what the Issuer needs to know about an authenticated user.
type Identity struct {
	Subject string
	UserID  int64
	Role    string
}

// Issued pairs a Token with its signed string form.
type Issued struct {
	Token
	Raw string
}
