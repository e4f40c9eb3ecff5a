package auth

import (
	"context"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
)

// Validator verifies token strings. Each extractor has a strict form that
// returns the decode error and a soft form that reports only success, for
// callers that want best-effort introspection (logout of an expired session,
// for instance).
type Validator struct {
	codec  *Codec
	logger logging.Logger
}

func NewValidator(codec *Codec, logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Validator{codec: codec, logger: logger.With("module", "token_validator")}
}

// Verify checks signature, then expiry, then claim structure.
func (v *Validator) Verify(raw string) (Token, error) {
	return v.codec.Decode(raw)
}

// VerifySoft is Verify without the error. Failures are logged at debug
// level against ctx.
func (v *Validator) VerifySoft(ctx context.Context, raw string) (Token, bool) {
	t, err := v.codec.Decode(raw)
	if err != nil {
		kind, _ := KindOf(err)
		v.logger.Debug(ctx, "token rejected", "kind", kind.String())
		return Token{}, false
	}
	return t, true
}

// TypeOf returns the token kind of a verified token.
func (v *Validator) TypeOf(raw string) (TokenType, error) {
	t, err := v.Verify(raw)
	return t.Type, err
}

// TypeOfSoft is TypeOf reporting only success.
func (v *Validator) TypeOfSoft(ctx context.Context, raw string) (TokenType, bool) {
	t, ok := v.VerifySoft(ctx, raw)
	return t.Type, ok
}

// UserIDOf returns the userId claim of a verified token.
func (v *Validator) UserIDOf(raw string) (int64, error) {
	t, err := v.Verify(raw)
	return t.UserID, err
}

// UserIDOfSoft is UserIDOf reporting only success.
func (v *Validator) UserIDOfSoft(ctx context.Context, raw string) (int64, bool) {
	t, ok := v.VerifySoft(ctx, raw)
	return t.UserID, ok
}

// SubjectOf returns the subject (the user's email) of a verified token.
func (v *Validator) SubjectOf(raw string) (string, error) {
	t, err := v.Verify(raw)
	return t.Subject, err
}

// SubjectOfSoft is SubjectOf reporting only success.
func (v *Validator) SubjectOfSoft(ctx context.Context, raw string) (string, bool) {
	t, ok := v.VerifySoft(ctx, raw)
	return t.Subject, ok
}

// TokenIDOf returns the token id (jti) of a verified token.
func (v *Validator) TokenIDOf(raw string) (string, error) {
	t, err := v.Verify(raw)
	return t.TokenID, err
}

// TokenIDOfSoft is TokenIDOf reporting only success.
func (v *Validator) TokenIDOfSoft(ctx context.Context, raw string) (string, bool) {
	t, ok := v.VerifySoft(ctx, raw)
	return t.TokenID, ok
}
