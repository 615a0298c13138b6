// Package metrics exposes transport counters for the console.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transport counts routed operations, their failures and the failures that
// were escalated to a confirmation dialog.
type Transport struct {
	Operations  *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Escalations prometheus.Counter
}

// NewTransport creates the counters and registers them with reg. A nil reg
// leaves them unregistered, which tests rely on.
func NewTransport(reg prometheus.Registerer) *Transport {
	t := &Transport{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostdeck_operations_total",
				Help: "GraphQL operations dispatched, by channel and kind",
			},
			[]string{"channel", "kind"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostdeck_transport_failures_total",
				Help: "Transport-level failures, by channel and status class",
			},
			[]string{"channel", "status"},
		),
		Escalations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ghostdeck_escalations_total",
				Help: "Failures that opened a confirmation dialog",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(t.Operations, t.Failures, t.Escalations)
	}
	return t
}

// StatusClass buckets a status code for the failures label. Zero means no
// response was received.
func StatusClass(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
