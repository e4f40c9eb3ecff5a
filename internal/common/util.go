package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLString returns size random bytes encoded with unpadded base64url,
// suitable for query parameters and cookie values.
func MakeRandURLString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
