package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromCollector records upstream provider calls: latency per operation and
// a counter labelled with operation and result.
type PromCollector struct {
	hist *prometheus.HistogramVec
	cnt  *prometheus.CounterVec
}

func NewPromCollector(reg prometheus.Registerer, namespace string) *PromCollector {
	hist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Upstream provider call latencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	cnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Upstream provider call counts",
		},
		[]string{"operation", "result"},
	)
	reg.MustRegister(hist, cnt)
	return &PromCollector{hist: hist, cnt: cnt}
}

func (p *PromCollector) ObserveLatency(op string, d time.Duration) {
	p.hist.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PromCollector) IncrementCounter(metric string, labels ...string) {
	p.cnt.WithLabelValues(append([]string{metric}, labels...)...).Inc()
}
