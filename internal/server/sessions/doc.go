// Package sessions records issued refresh sessions in Redis.
//
// A session is one key per refresh token, {prefix}:{userId}:{tokenId}, whose
// value is the issuance time and whose TTL is the refresh token's remaining
// lifetime. The key existing is the only proof that a refresh token is still
// live; the signed token alone is not enough.
package sessions
