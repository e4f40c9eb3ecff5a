package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/common"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/oauth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/services"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	writeJSON(w, status, apiError{Code: code, Message: msg})
}

type errorMapping struct {
	status int
	code   string
	msg    string
}

var kindMappings = map[auth.Kind]errorMapping{
	auth.KindExpired:           {http.StatusUnauthorized, "JWT_EXPIRED", "token has expired"},
	auth.KindMalformed:         {http.StatusUnauthorized, "JWT_MALFORMED", "token is malformed"},
	auth.KindBadSignature:      {http.StatusUnauthorized, "JWT_INVALID_SIGNATURE", "token signature is invalid"},
	auth.KindWrongTokenKind:    {http.StatusUnauthorized, "INVALID_ACCESS_TOKEN", "an access token is required"},
	auth.KindPrincipalNotFound: {http.StatusUnauthorized, "PRINCIPAL_NOT_FOUND", "user no longer exists"},
	auth.KindStoreUnavailable:  {http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "session store unavailable, retry later"},
}

var internalError = errorMapping{http.StatusInternalServerError, "INTERNAL_ERROR", "internal error"}

// mapError chooses the response for err. Each token failure keeps its own
// code: clients refresh on JWT_EXPIRED and force a new login on the others.
func mapError(err error) errorMapping {
	if kind, ok := auth.KindOf(err); ok {
		if m, ok := kindMappings[kind]; ok {
			return m
		}
		return internalError
	}
	switch {
	case errors.Is(err, services.ErrSessionRevoked):
		return errorMapping{http.StatusUnauthorized, "REFRESH_SESSION_REVOKED", "session has been revoked, log in again"}
	case errors.Is(err, common.ErrorInvalidIdentity), errors.Is(err, oauth.ErrUnverified),
		errors.Is(err, oauth.ErrExchange), errors.Is(err, oauth.ErrUserInfo):
		return errorMapping{http.StatusUnauthorized, "LOGIN_FAILED", "external login failed"}
	}
	return internalError
}

func writeMappedError(w http.ResponseWriter, err error) {
	m := mapError(err)
	writeError(w, m.status, m.code, m.msg)
}
