package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type promMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	llmTokens  *prometheus.CounterVec
	sessions   prometheus.Gauge
}

func newPromMetrics() *promMetrics {
	return &promMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordermatters",
			Name:      "operations_total",
			Help:      "Engine and chat operations by type",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ordermatters",
			Name:      "operation_duration_seconds",
			Help:      "Operation latency by type",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 5, 30},
		}, []string{"op"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordermatters",
			Name:      "llm_tokens_total",
			Help:      "Language model tokens by direction",
		}, []string{"direction"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ordermatters",
			Name:      "active_sessions",
			Help:      "Live sessions currently open",
		}),
	}
}

func (p *promMetrics) observe(op string, d time.Duration) {
	p.operations.WithLabelValues(op).Inc()
	p.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *promMetrics) tokens(in, out int64) {
	if in > 0 {
		p.llmTokens.WithLabelValues("input").Add(float64(in))
	}
	if out > 0 {
		p.llmTokens.WithLabelValues("output").Add(float64(out))
	}
}

// Collectors returns the Prometheus collectors fed by c.
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.prom.operations, c.prom.duration, c.prom.llmTokens, c.prom.sessions}
}

// Register adds the collectors to reg. Collectors that are already
// registered are skipped.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.Collectors() {
		if err := reg.Register(col); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
