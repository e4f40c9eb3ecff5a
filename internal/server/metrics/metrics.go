// Package metrics exposes Prometheus counters for the authentication
// subsystem. A nil *AuthMetrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthMetrics counts logins, refreshes, pipeline rejections and revocations.
type AuthMetrics struct {
	logins          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	revocations     *prometheus.CounterVec
	revokedSessions prometheus.Counter
}

func NewAuthMetrics() *AuthMetrics {
	return &AuthMetrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secondbrain_auth_logins_total",
				Help: "External logins completed, by result",
			},
			[]string{"result"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secondbrain_auth_refreshes_total",
				Help: "Refresh token rotations, by result",
			},
			[]string{"result"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secondbrain_auth_rejections_total",
				Help: "Requests rejected by the authentication pipeline, by error kind",
			},
			[]string{"kind"},
		),
		revocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secondbrain_auth_revocations_total",
				Help: "Session revocation calls, by scope (one|all)",
			},
			[]string{"scope"},
		),
		revokedSessions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "secondbrain_auth_revoked_sessions_total",
				Help: "Refresh sessions deleted by bulk revocation",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *AuthMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.logins.Describe(ch)
	m.refreshes.Describe(ch)
	m.rejections.Describe(ch)
	m.revocations.Describe(ch)
	m.revokedSessions.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *AuthMetrics) Collect(ch chan<- prometheus.Metric) {
	m.logins.Collect(ch)
	m.refreshes.Collect(ch)
	m.rejections.Collect(ch)
	m.revocations.Collect(ch)
	m.revokedSessions.Collect(ch)
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *AuthMetrics) Login(ok bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result(ok)).Inc()
}

func (m *AuthMetrics) Refresh(ok bool) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result(ok)).Inc()
}

// Rejected records a pipeline rejection; kind is an auth.Kind name.
func (m *AuthMetrics) Rejected(kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind).Inc()
}

func (m *AuthMetrics) RevokedOne() {
	if m == nil {
		return
	}
	m.revocations.WithLabelValues("one").Inc()
}

func (m *AuthMetrics) RevokedAll(n int) {
	if m == nil {
		return
	}
	m.revocations.WithLabelValues("all").Inc()
	m.revokedSessions.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
