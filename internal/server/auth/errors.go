package auth

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures. Clients react differently to each:
// an expired token is silently refreshed, a forged one forces a new login.
type Kind int

const (
	KindExpired Kind = iota + 1
	KindMalformed
	KindBadSignature
	KindWrongTokenKind
	KindPrincipalNotFound
	KindStoreUnavailable
	KindMisconfiguredKey
)

var kindNames = map[Kind]string{
	KindExpired:           "EXPIRED",
	KindMalformed:         "MALFORMED",
	KindBadSignature:      "BAD_SIGNATURE",
	KindWrongTokenKind:    "WRONG_TOKEN_KIND",
	KindPrincipalNotFound: "PRINCIPAL_NOT_FOUND",
	KindStoreUnavailable:  "STORE_UNAVAILABLE",
	KindMisconfiguredKey:  "MISCONFIGURED_KEY",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels, one per Kind, for errors.Is matching.
var (
	ErrExpired           = errors.New("token expired")
	ErrMalformed         = errors.New("token malformed")
	ErrBadSignature      = errors.New("token signature invalid")
	ErrWrongTokenKind    = errors.New("wrong token kind")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrStoreUnavailable  = errors.New("session store unavailable")
	ErrMisconfiguredKey  = errors.New("signing key misconfigured")
)

var kindSentinels = map[Kind]error{
	KindExpired:           ErrExpired,
	KindMalformed:         ErrMalformed,
	KindBadSignature:      ErrBadSignature,
	KindWrongTokenKind:    ErrWrongTokenKind,
	KindPrincipalNotFound: ErrPrincipalNotFound,
	KindStoreUnavailable:  ErrStoreUnavailable,
	KindMisconfiguredKey:  ErrMisconfiguredKey,
}

// Error is an authentication failure of a known Kind. It matches both the
// Kind's sentinel and the underlying cause with errors.Is.
type Error struct {
	Kind Kind
	Err  error
}

// NewError wraps cause (which may be nil) as an *Error of the given kind.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	sentinel := kindSentinels[e.Kind]
	if sentinel == nil {
		sentinel = errors.New(e.Kind.String())
	}
	if e.Err == nil {
		return sentinel.Error()
	}
	return sentinel.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind carried anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}
