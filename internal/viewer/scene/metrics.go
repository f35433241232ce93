package scene

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "sceneview"
	metricsSubsystem = "boxes3d"
)

// Skip reasons recorded by Metrics.
const (
	SkipUnreachable = "unreachable"
	SkipNoData      = "no_data"
	SkipQueryError  = "query_error"
)

// Metrics counts extraction work. A nil *Metrics records nothing.
type Metrics struct {
	entitiesProcessed prometheus.Counter
	entitiesSkipped   *prometheus.CounterVec
	instancesEmitted  prometheus.Counter
	instancesDropped  prometheus.Counter
	frameSeconds      prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entitiesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "entities_processed_total",
			Help:      "Entities that contributed box instances to a frame",
		}),
		entitiesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "entities_skipped_total",
			Help:      "Entities skipped during extraction by reason",
		}, []string{"reason"}),
		instancesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "instances_emitted_total",
			Help:      "Box instances turned into line segments",
		}),
		instancesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "instances_dropped_total",
			Help:      "Box instances dropped because of malformed data",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "frame_seconds",
			Help:      "Time to extract the boxes of one frame",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.entitiesProcessed,
			m.entitiesSkipped,
			m.instancesEmitted,
			m.instancesDropped,
			m.frameSeconds,
		)
	}
	return m
}

func (m *Metrics) processed() {
	if m != nil {
		m.entitiesProcessed.Inc()
	}
}

func (m *Metrics) skipped(reason string) {
	if m != nil {
		m.entitiesSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) emitted() {
	if m != nil {
		m.instancesEmitted.Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.instancesDropped.Inc()
	}
}

func (m *Metrics) observeFrame(start time.Time) {
	if m != nil {
		m.frameSeconds.Observe(time.Since(start).Seconds())
	}
}
