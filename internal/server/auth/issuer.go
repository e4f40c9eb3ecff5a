package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidIdentity is returned by the Issuer for an identity it cannot mint
// a token for.
var ErrInvalidIdentity = errors.New("identity needs a subject and a positive user id")

// Issuer mints access and refresh tokens. It does not record refresh
// sessions; callers persist them.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithIssuerClock overrides the clock used for issued-at.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// WithTokenIDs overrides the token id generator.
func WithTokenIDs(newID func() string) IssuerOption {
	return func(i *Issuer) { i.newID = newID }
}

func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AccessTTL is the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL is the configured refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess mints a short-lived ACCESS token carrying the identity's role.
func (i *Issuer) IssueAccess(id Identity) (Issued, error) {
	return i.issue(id, TypeAccess, id.Role, i.accessTTL)
}

// IssueRefresh mints a long-lived REFRESH token. Refresh tokens carry no
// role: they never authorize API calls.
func (i *Issuer) IssueRefresh(id Identity) (Issued, error) {
	return i.issue(id, TypeRefresh, "", i.refreshTTL)
}

func (i *Issuer) issue(id Identity, typ TokenType, role string, ttl time.Duration) (Issued, error) {
	if id.Subject == "" || id.UserID <= 0 {
		return Issued{}, ErrInvalidIdentity
	}

	// JWT dates have second precision; truncate so the returned Token equals
	// what Decode will produce.
	now := i.now().UTC().Truncate(time.Second)
	t := Token{
		Subject:   id.Subject,
		UserID:    id.UserID,
		Role:      role,
		Type:      typ,
		TokenID:   i.newID(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	raw, err := i.codec.Encode(t)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: t, Raw: raw}, nil
}
