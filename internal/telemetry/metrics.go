package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

var (
	// DetectionsTotal counts classified observations by verdict
	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "detections_total",
			Help:      "Total number of classified access point observations",
		},
		[]string{"attack_type", "threat_level"},
	)

	// DetectionFailures counts detections that fell back to a safe result
	DetectionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "detection_failures_total",
			Help:      "Total number of detections that failed and were reported as safe",
		},
		[]string{"reason"},
	)

	// EvidenceConfirmed counts profiles whose attack evidence was confirmed
	EvidenceConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "evidence_confirmed_total",
			Help:      "Total number of confirmed persistent attacks",
		},
	)

	// BaselinesLearned counts profiles promoted to baseline
	BaselinesLearned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "baselines_learned_total",
			Help:      "Total number of access points learned as trusted",
		},
	)

	// TrackedProfiles reports the number of device profiles held in memory
	TrackedProfiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nettrust",
			Name:      "tracked_profiles",
			Help:      "Number of access point profiles currently tracked",
		},
	)

	// ScansTotal counts processed scan batches by ingest source
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "scans_total",
			Help:      "Total number of processed scan batches",
		},
		[]string{"source"},
	)

	// ScanDuration observes the time spent classifying a scan batch
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "nettrust",
			Name:      "scan_duration_seconds",
			Help:      "Time spent classifying a scan batch",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	// IngestMessages counts scan messages received from the broker by outcome
	IngestMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nettrust",
			Name:      "ingest_messages_total",
			Help:      "Total number of scan messages received over MQTT",
		},
		[]string{"outcome"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(DetectionsTotal)
		prometheus.DefaultRegisterer.Register(DetectionFailures)
		prometheus.DefaultRegisterer.Register(EvidenceConfirmed)
		prometheus.DefaultRegisterer.Register(BaselinesLearned)
		prometheus.DefaultRegisterer.Register(TrackedProfiles)
		prometheus.DefaultRegisterer.Register(ScansTotal)
		prometheus.DefaultRegisterer.Register(ScanDuration)
		prometheus.DefaultRegisterer.Register(IngestMessages)
	})
}

// RecordResult counts one classified observation.
func RecordResult(r domain.DetectionResult) {
	DetectionsTotal.WithLabelValues(r.AttackType.String(), r.ThreatLevel.String()).Inc()
}

// ProfileMetrics counts trust transitions. It satisfies the registry's
// profile observer interface.
type ProfileMetrics struct{}

// OnBaselineLearned increments BaselinesLearned.
func (ProfileMetrics) OnBaselineLearned(domain.DeviceProfile) {
	BaselinesLearned.Inc()
}

// OnAttackConfirmed increments EvidenceConfirmed.
func (ProfileMetrics) OnAttackConfirmed(domain.DeviceProfile) {
	EvidenceConfirmed.Inc()
}
