package auth

import (
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustKey(t *testing.T, secret []byte) *SigningKey {
	t.Helper()
	k, err := NewSigningKey(secret)
	if err != nil {
		t.Fatalf("NewSigningKey: %v", err)
	}
	return k
}
