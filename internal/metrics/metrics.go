// Package metrics expone los contadores Prometheus del servicio sobre un
// registry propio, sin las métricas Go por defecto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recoveryos"

// Metrics agrupa los contadores del servicio. Una instancia por proceso,
// inyectada donde se necesite.
type Metrics struct {
	registry *prometheus.Registry

	checkinsTotal      prometheus.Counter
	riskBands          *prometheus.CounterVec
	rateLimitedTotal   prometheus.Counter
	consentWritesTotal prometheus.Counter
	notificationsTotal prometheus.Counter
	appInfo            *prometheus.GaugeVec
}

// New crea el set de métricas sobre un registry limpio y fija la métrica
// de versión de la aplicación.
func New(appVersion string) *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Metrics{registry: registry}
	m.checkinsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_total",
		Help:      "Total number of check-ins ingested",
	})
	m.riskBands = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_band_total",
			Help:      "Risk band distribution across scored check-ins",
		},
		[]string{"band"},
	)
	m.rateLimitedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of check-in requests rejected by the rate limiter",
	})
	m.consentWritesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consent_writes_total",
		Help:      "Total number of consent records written",
	})
	m.notificationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications sent",
	})
	m.appInfo = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_info",
			Help:      "Application version info",
		},
		[]string{"version"},
	)
	m.appInfo.WithLabelValues(appVersion).Set(1)

	return m
}

// RecordCheckin cuenta un check-in ingresado.
func (m *Metrics) RecordCheckin() {
	m.checkinsTotal.Inc()
}

// RecordRiskBand cuenta una evaluación en la banda dada.
func (m *Metrics) RecordRiskBand(band string) {
	m.riskBands.WithLabelValues(band).Inc()
}

// RecordRateLimited cuenta un rechazo por rate limit.
func (m *Metrics) RecordRateLimited() {
	m.rateLimitedTotal.Inc()
}

// RecordConsentWrite cuenta una escritura de consentimiento.
func (m *Metrics) RecordConsentWrite() {
	m.consentWritesTotal.Inc()
}

// RecordNotification cuenta una notificación enviada.
func (m *Metrics) RecordNotification() {
	m.notificationsTotal.Inc()
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler devuelve el handler de scrape para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
