package auth

import "fmt"

// MinKeyBytes is the minimum HS256 key length (256 bits).
const MinKeyBytes = 32

// SigningKey is the process-wide HMAC key. It is built once at startup and
// never changes; the zero value is unusable.
type SigningKey struct {
	secret []byte
}

// NewSigningKey copies secret and checks its strength. A short key is a
// KindMisconfiguredKey error and must stop the process.
func NewSigningKey(secret []byte) (*SigningKey, error) {
	if len(secret) < MinKeyBytes {
		return nil, NewError(KindMisconfiguredKey,
			fmt.Errorf("key must be at least %d bytes, got %d", MinKeyBytes, len(secret)))
	}
	b := make([]byte, len(secret))
	copy(b, secret)
	return &SigningKey{secret: b}, nil
}

// Len reports the key length in bytes.
func (k *SigningKey) Len() int { return len(k.secret) }

func (k *SigningKey) bytes() []byte { return k.secret }
