// Package metrics defines the Prometheus metrics exported by temple-portal.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tamil date resolution outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeSuspect      = "suspect"
	OutcomeInvalid      = "invalid"
	OutcomeNoTransition = "no_transition"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	registry *prometheus.Registry

	TamilDateResolutions *prometheus.CounterVec   // labels: outcome
	ContentChanges       *prometheus.CounterVec   // labels: collection, op
	HTTPRequestDuration  *prometheus.HistogramVec // labels: route, method, code
	RealtimeClients      prometheus.Gauge
	RealtimeDropped      prometheus.Counter
	LoginAttempts        *prometheus.CounterVec // labels: result
}

// New registers and returns all metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TamilDateResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "temple_tamil_date_resolutions_total",
			Help: "Tamil date resolutions by outcome",
		}, []string{"outcome"}),
		ContentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "temple_content_changes_total",
			Help: "Committed content mutations",
		}, []string{"collection", "op"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "temple_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
		RealtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "temple_realtime_clients",
			Help: "Connected realtime subscribers",
		}),
		RealtimeDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "temple_realtime_dropped_total",
			Help: "Change events dropped for slow subscribers",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "temple_admin_login_attempts_total",
			Help: "Administrator sign-in attempts by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TamilDateResolutions,
		m.ContentChanges,
		m.HTTPRequestDuration,
		m.RealtimeClients,
		m.RealtimeDropped,
		m.LoginAttempts,
	)
	return m
}

// Registry exposes the underlying registry, for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolution counts one Tamil date resolution.
func (m *Metrics) ObserveResolution(result tamildate.Result, err error) {
	m.TamilDateResolutions.WithLabelValues(ResolutionOutcome(result, err)).Inc()
}

// ResolutionOutcome classifies a resolver return value.
func ResolutionOutcome(result tamildate.Result, err error) string {
	switch {
	case errors.Is(err, tamildate.ErrNoTransition):
		return OutcomeNoTransition
	case err != nil:
		return OutcomeInvalid
	case result.Suspect:
		return OutcomeSuspect
	default:
		return OutcomeOK
	}
}

// Publish counts a content change. It lets Metrics sit in a store publisher
// chain.
func (m *Metrics) Publish(c store.Change) {
	m.ContentChanges.WithLabelValues(c.Collection, c.Op).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, method, code string, elapsed time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}
