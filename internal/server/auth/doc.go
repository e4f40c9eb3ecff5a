// Package auth issues and verifies the signed access and refresh tokens used
// by SecondBrain clients.
//
// A Token is a fixed claim set (subject, user id, role, type, token id,
// issued-at, expires-at) serialized as an HS256 JWT. The Codec is the only
// place that touches the wire format. The Issuer mints tokens from an
// Identity and has no side effects. The Validator verifies signature, then
// expiry, then claim structure, and reports failures as *Error values whose
// Kind lets callers tell expiry from forgery from garbage.
//
// Everything here is immutable after construction and safe for concurrent use.
package auth
