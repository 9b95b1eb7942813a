package health

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments bot activity and data-layer outcomes for Prometheus.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	opsTotal     *prometheus.CounterVec
	updatesTotal prometheus.Counter
	uploadsTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	opsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_operations_total",
		Help: "Data-layer operations by name and outcome",
	}, []string{"op", "outcome"})

	updatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Telegram updates processed",
	})

	uploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lecture_uploads_total",
		Help: "Lecture file uploads by outcome",
	}, []string{"outcome"})

	registry.MustRegister(opsTotal, updatesTotal, uploadsTotal)

	return &Metrics{
		registry:     registry,
		handler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		opsTotal:     opsTotal,
		updatesTotal: updatesTotal,
		uploadsTotal: uploadsTotal,
	}
}

// ObserveOperation records a data-layer call outcome.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.opsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveUpdate records one processed Telegram update.
func (m *Metrics) ObserveUpdate() {
	if m == nil {
		return
	}
	m.updatesTotal.Inc()
}

// ObserveUpload records a lecture file upload outcome.
func (m *Metrics) ObserveUpload(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
