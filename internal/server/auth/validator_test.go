package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
)

func TestValidator_Extractors(t *testing.T) {
	iss, c := newTestIssuer(t, epoch)
	v := NewValidator(c, nil)

	acc, err := iss.IssueAccess(alice)
	require.NoError(t, err)

	typ, err := v.TypeOf(acc.Raw)
	require.NoError(t, err)
	assert.Equal(t, TypeAccess, typ)

	uid, err := v.UserIDOf(acc.Raw)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, uid)

	sub, err := v.SubjectOf(acc.Raw)
	require.NoError(t, err)
	assert.Equal(t, alice.Subject, sub)

	tid, err := v.TokenIDOf(acc.Raw)
	require.NoError(t, err)
	assert.Equal(t, acc.TokenID, tid)
}

func TestValidator_Strict_ReturnsKind(t *testing.T) {
	iss, _ := newTestIssuer(t, epoch)
	acc, err := iss.IssueAccess(alice)
	require.NoError(t, err)

	late := NewValidator(NewCodec(mustKey(t, testSecret), WithCodecClock(fixedClock(epoch.Add(time.Hour)))), nil)

	_, err = late.UserIDOf(acc.Raw)
	assert.True(t, errors.Is(err, ErrExpired))

	_, err = late.TokenIDOf("junk")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestValidator_Soft(t *testing.T) {
	iss, c := newTestIssuer(t, epoch)
	v := NewValidator(c, nil)

	ref, err := iss.IssueRefresh(alice)
	require.NoError(t, err)

	ctx := context.Background()
	typ, ok := v.TypeOfSoft(ctx, ref.Raw)
	assert.True(t, ok)
	assert.Equal(t, TypeRefresh, typ)

	uid, ok := v.UserIDOfSoft(ctx, ref.Raw)
	assert.True(t, ok)
	assert.Equal(t, alice.UserID, uid)

	sub, ok := v.SubjectOfSoft(ctx, ref.Raw)
	assert.True(t, ok)
	assert.Equal(t, alice.Subject, sub)

	tid, ok := v.TokenIDOfSoft(ctx, ref.Raw)
	assert.True(t, ok)
	assert.Equal(t, ref.TokenID, tid)

	_, ok = v.UserIDOfSoft(ctx, "junk")
	assert.False(t, ok)
	_, ok = v.TokenIDOfSoft(ctx, "")
	assert.False(t, ok)
}

type ctxKey struct{}

// debugRecorder keeps the context of every Debug call.
type debugRecorder struct {
	logging.Nop
	ctxs []context.Context
}

func (r *debugRecorder) Debug(ctx context.Context, _ string, _ ...any) { r.ctxs = append(r.ctxs, ctx) }
func (r *debugRecorder) With(...any) logging.Logger                      { return r }

func TestValidator_VerifySoft_LogsWithCallerContext(t *testing.T) {
	_, c := newTestIssuer(t, epoch)
	rec := &debugRecorder{}
	v := NewValidator(c, rec)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	_, ok := v.VerifySoft(ctx, "junk")
	assert.False(t, ok)

	require.Len(t, rec.ctxs, 1)
	assert.Equal(t, "req-1", rec.ctxs[0].Value(ctxKey{}))
}
