package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartOpsTotal counts cart mutations by operation and outcome.
	CartOpsTotal *prometheus.CounterVec
	// PromoFiresTotal counts promotion activations by kind.
	PromoFiresTotal *prometheus.CounterVec
	// QuoteComputedTotal counts quote computations by cache outcome.
	QuoteComputedTotal *prometheus.CounterVec
	// QuoteDuration records quote computation latency in milliseconds.
	QuoteDuration prometheus.Histogram
	// SessionsActive tracks the number of live shopping sessions.
	SessionsActive prometheus.Gauge
	// SessionsExpiredTotal counts sessions removed by the TTL sweeper.
	SessionsExpiredTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart mutation outcomes by operation.",
		}, []string{"op", "result"})
		PromoFiresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_fires_total",
			Help:      "Count of promotion activations by kind.",
		}, []string{"kind"})
		QuoteComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_computed_total",
			Help:      "Count of quote requests by cache outcome.",
		}, []string{"source"})
		QuoteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_ms",
			Help:      "Latency of quote computation in milliseconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		})
		SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live shopping sessions.",
		})
		SessionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Number of sessions removed after exceeding their TTL.",
		})

		mustRegisterCollector(reg, CartOpsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartOpsTotal = v
			}
		})
		mustRegisterCollector(reg, PromoFiresTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromoFiresTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteComputedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteComputedTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteDuration = v
			}
		})
		mustRegisterCollector(reg, SessionsActive, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				SessionsActive = v
			}
		})
		mustRegisterCollector(reg, SessionsExpiredTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SessionsExpiredTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
