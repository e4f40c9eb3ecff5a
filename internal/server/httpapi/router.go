package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/metrics"
)

// RouterConfig collects what NewRouter needs.
type RouterConfig struct {
	Handler        *Handler
	Authenticator  *authn.Authenticator
	Metrics        *metrics.AuthMetrics
	MetricsHandler http.Handler
	Logger         logging.Logger
}

// NewRouter mounts the routes. Refresh and logout sit outside the pipeline:
// they carry the refresh cookie, and a stale access token must not block them.
func NewRouter(c RouterConfig) http.Handler {
	logger := c.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	h := c.Handler

	r := mux.NewRouter()
	r.HandleFunc("/healthz", Healthz).Methods(http.MethodGet)
	if c.MetricsHandler != nil {
		r.Handle("/metrics", c.MetricsHandler).Methods(http.MethodGet)
	}

	r.HandleFunc("/oauth2/authorization/google", h.LoginStart).Methods(http.MethodGet)
	r.HandleFunc("/login/oauth2/code/google", h.LoginCallback).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(Middleware(c.Authenticator, c.Metrics, logger))
	api.Handle("/users/me", RequirePrincipal(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
	api.Handle("/auth/sessions/revoke-all", RequirePrincipal(http.HandlerFunc(h.RevokeAll))).Methods(http.MethodPost)

	return WithRequestLogging(r, logger.With("module", "http"))
}
