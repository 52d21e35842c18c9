package tokenguard

import (
	"time"

	internalmetrics "github.com/MrEthical07/tokenguard/internal/metrics"
)

// MetricID identifies an engine counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricSignupSuccess
	MetricSignupDuplicate
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshWrongKind
	MetricLogout
	MetricValidateSuccess
	MetricValidateRejected
	MetricValidateUnavailable
	MetricAuthorizeDenied
	MetricConfigurationFault
	// MetricValidateLatency is the only ID with a latency histogram.
	MetricValidateLatency
	metricIDCount
)

// Metrics wraps the lock-free counter store with engine metric IDs.
type Metrics struct {
	store *internalmetrics.Store
}

// NewMetrics allocates counters according to cfg. A disabled Metrics accepts
// writes and discards them.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		store: internalmetrics.New(
			int(metricIDCount),
			cfg.Enabled,
			cfg.EnableLatencyHistograms,
			int(MetricValidateLatency),
		),
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.store.Enabled()
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil {
		return
	}
	m.store.Inc(int(id))
}

// Observe records a latency sample for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil {
		return
	}
	m.store.Observe(int(id), d)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil {
		return 0
	}
	return m.store.Value(int(id))
}

// Snapshot copies every counter and histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil {
		return out
	}

	snap := m.store.Snapshot()
	for id, v := range snap.Counters {
		out.Counters[MetricID(id)] = v
	}
	for id, buckets := range snap.Histograms {
		out.Histograms[MetricID(id)] = buckets
	}
	return out
}
