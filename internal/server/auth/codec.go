package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuerClaim is the "iss" claim written into and required from every token.
const issuerClaim = "secondbrain"

// claims is the JWT payload. Standard fields live in RegisteredClaims
// (sub, jti, iat, exp, iss); the rest are ours.
type claims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"userId"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"tokenType"`
}

// Codec converts Tokens to and from signed strings.
type Codec struct {
	key    *SigningKey
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCodecClock overrides the clock used for expiry checks.
func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

func NewCodec(key *SigningKey, opts ...CodecOption) *Codec {
	c := &Codec{key: key, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuerClaim),
		jwt.WithTimeFunc(c.parserNow),
	)
	return c
}

// parserNow shifts the clock back by 1ns for the jwt library, which treats
// exp as exclusive. A token is valid through its ExpiresAt instant and
// expired strictly after it.
func (c *Codec) parserNow() time.Time {
	return c.now().Add(-time.Nanosecond)
}

// Encode signs t. It fails only when t itself is unusable (no token id,
// unknown type, expiry not after issuance), which is a programming error.
func (c *Codec) Encode(t Token) (string, error) {
	if !t.Type.Valid() {
		return "", fmt.Errorf("encode: unknown token type %q", t.Type)
	}
	if t.TokenID == "" {
		return "", errors.New("encode: empty token id")
	}
	if !t.ExpiresAt.After(t.IssuedAt) {
		return "", errors.New("encode: expiry must be after issuance")
	}

	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerClaim,
			Subject:   t.Subject,
			ID:        t.TokenID,
			IssuedAt:  jwt.NewNumericDate(t.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(t.ExpiresAt),
		},
		UserID:    t.UserID,
		Role:      t.Role,
		TokenType: t.Type,
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.key.bytes())
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return s, nil
}

// Decode verifies the signature, then the expiry, then the claim structure.
// Every failure is an *Error of kind KindBadSignature, KindExpired or
// KindMalformed.
func (c *Codec) Decode(raw string) (Token, error) {
	var cl claims
	_, err := c.parser.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.key.bytes(), nil
	})
	if err != nil {
		return Token{}, classify(err)
	}
	return cl.token()
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return NewError(KindBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewError(KindExpired, err)
	default:
		return NewError(KindMalformed, err)
	}
}

func (cl *claims) token() (Token, error) {
	switch {
	case !cl.TokenType.Valid():
		return Token{}, NewError(KindMalformed, fmt.Errorf("unknown token type %q", cl.TokenType))
	case cl.Subject == "":
		return Token{}, NewError(KindMalformed, errors.New("missing subject"))
	case cl.ID == "":
		return Token{}, NewError(KindMalformed, errors.New("missing token id"))
	case cl.UserID <= 0:
		return Token{}, NewError(KindMalformed, errors.New("missing user id"))
	case cl.IssuedAt == nil:
		return Token{}, NewError(KindMalformed, errors.New("missing issued-at"))
	}

	return Token{
		Subject:   cl.Subject,
		UserID:    cl.UserID,
		Role:      cl.Role,
		Type:      cl.TokenType,
		TokenID:   cl.ID,
		IssuedAt:  cl.IssuedAt.Time.UTC(),
		ExpiresAt: cl.ExpiresAt.Time.UTC(),
	}, nil
}
