package forwarder

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the forwarder's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Forwarded *prometheus.CounterVec
	Filtered  *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Pending   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apps2desktop",
			Name:      "forwarded_total",
			Help:      "Notifications delivered to the target, by operation.",
		}, []string{"op"}),
		Filtered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apps2desktop",
			Name:      "filtered_total",
			Help:      "Notifications skipped because the item is not an app.",
		}, []string{"op"}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apps2desktop",
			Name:      "failed_total",
			Help:      "Notifications rejected or failed at the target.",
		}, []string{"op"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "apps2desktop",
			Name:      "pending",
			Help:      "Notifications queued while the target is unavailable.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Forwarded, m.Filtered, m.Failed, m.Pending)
	}
	return m
}

func (m *Metrics) forwarded(op Op) {
	if m != nil {
		m.Forwarded.WithLabelValues(string(op)).Inc()
	}
}

func (m *Metrics) filtered(op Op) {
	if m != nil {
		m.Filtered.WithLabelValues(string(op)).Inc()
	}
}

func (m *Metrics) failed(op Op) {
	if m != nil {
		m.Failed.WithLabelValues(string(op)).Inc()
	}
}

func (m *Metrics) setPending(n int) {
	if m != nil {
		m.Pending.Set(float64(n))
	}
}
