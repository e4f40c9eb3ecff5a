package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", NewError(KindStoreUnavailable, cause))

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrExpired))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindStoreUnavailable, kind)
	assert.Equal(t, "wrapped: session store unavailable: boom", err.Error())
}

func TestError_NilCause(t *testing.T) {
	err := NewError(KindWrongTokenKind, nil)
	assert.Equal(t, "wrong token kind", err.Error())
	assert.True(t, errors.Is(err, ErrWrongTokenKind))
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("x"))
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "EXPIRED", KindExpired.String())
	assert.Equal(t, "PRINCIPAL_NOT_FOUND", KindPrincipalNotFound.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
