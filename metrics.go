package authbridge

import (
	"sync/atomic"
	"time"
)

// MetricID names one in-process counter maintained by the facade.
type MetricID uint16

const (
	// MetricSignInSuccess counts sign-in operations the bridge resolved.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure counts sign-in operations the bridge rejected.
	MetricSignInFailure
	// MetricSignOut counts completed sign-out operations.
	MetricSignOut
	// MetricAccountCreated counts successful account creations.
	MetricAccountCreated
	// MetricAccountCreationFailure counts rejected account creations.
	MetricAccountCreationFailure
	// MetricReauthSuccess counts successful reauthentications.
	MetricReauthSuccess
	// MetricReauthFailure counts rejected reauthentications.
	MetricReauthFailure
	// MetricLinkSuccess counts successful credential links.
	MetricLinkSuccess
	// MetricLinkFailure counts rejected credential links.
	MetricLinkFailure
	// MetricUnlink counts provider unlink operations.
	MetricUnlink
	// MetricProfileUpdated counts profile updates.
	MetricProfileUpdated
	// MetricEmailUpdated counts email updates.
	MetricEmailUpdated
	// MetricPasswordUpdated counts password updates.
	MetricPasswordUpdated
	// MetricVerificationEmailSent counts verification-email sends.
	MetricVerificationEmailSent
	// MetricPasswordResetEmailSent counts password-reset-email sends.
	MetricPasswordResetEmailSent
	// MetricUserDeleted counts account deletions.
	MetricUserDeleted
	// MetricUserReloaded counts user reloads.
	MetricUserReloaded
	// MetricTokenFetched counts successful ID-token retrievals.
	MetricTokenFetched
	// MetricTokenFetchFailure counts rejected ID-token retrievals.
	MetricTokenFetchFailure
	// MetricStateEvents counts auth-state events received from the bridge.
	MetricStateEvents
	// MetricListenerNotifications counts individual listener invocations.
	MetricListenerNotifications
	// MetricSignInLatency is the sign-in latency histogram.
	MetricSignInLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters incremented on the operation paths.
// All methods are safe for concurrent use; a nil or disabled Metrics is a
// no-op.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics instance honoring cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one latency sample. Only MetricSignInLatency carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricSignInLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram bucket.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricSignInLatency].buckets[i])
		}
		s.Histograms[MetricSignInLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
