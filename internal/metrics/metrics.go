// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "checkout_bridge"

// Metrics агрегирует счётчики исходов checkout/verify и гистограмму вызовов шлюза.
type Metrics struct {
	checkouts    *prometheus.CounterVec
	verifies     *prometheus.CounterVec
	gatewayCalls *prometheus.HistogramVec
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		verifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Transaction verifications by result.",
		}, []string{"result"}),
		gatewayCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of outbound payment gateway calls.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.checkouts, m.verifies, m.gatewayCalls)
	return m
}

// CheckoutResult увеличивает счётчик checkout для исхода result.
func (m *Metrics) CheckoutResult(result string) {
	m.checkouts.WithLabelValues(result).Inc()
}

// VerifyResult увеличивает счётчик verify для исхода result.
func (m *Metrics) VerifyResult(result string) {
	m.verifies.WithLabelValues(result).Inc()
}

// ObserveGatewayCall записывает длительность вызова шлюза.
func (m *Metrics) ObserveGatewayCall(operation, outcome string, d time.Duration) {
	m.gatewayCalls.WithLabelValues(operation, outcome).Observe(d.Seconds())
}
