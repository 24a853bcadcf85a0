package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeFallback = "fallback"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
)

// Metrics provides observability for dispatch points.
type Metrics struct {
	// Dispatches by point and outcome
	Dispatches *prometheus.CounterVec

	// Layers visited before a point resolved (or gave up)
	LayersScanned *prometheus.HistogramVec

	// Committed registrations by point, split by whether they replaced an entity
	Registrations *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg. Pass
// prometheus.DefaultRegisterer to expose through the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flywheel_dispatch_total",
			Help: "Total dispatches by point and outcome",
		}, []string{"point", "outcome"}), // outcome: "hit", "fallback", "miss", "error"

		LayersScanned: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flywheel_dispatch_layers_scanned",
			Help:    "Number of lookup layers visited per dispatch",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}, []string{"point"}),

		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flywheel_registrations_total",
			Help: "Total committed registrations by point",
		}, []string{"point", "replaced"}),
	}
}

// IncrementDispatch records one dispatch outcome.
func (m *Metrics) IncrementDispatch(point, outcome string) {
	if m != nil {
		m.Dispatches.WithLabelValues(point, outcome).Inc()
	}
}

// ObserveLayers records how many layers a dispatch visited.
func (m *Metrics) ObserveLayers(point string, n int) {
	if m != nil {
		m.LayersScanned.WithLabelValues(point).Observe(float64(n))
	}
}

// IncrementRegistration records a committed registration.
func (m *Metrics) IncrementRegistration(point string, replaced bool) {
	if m != nil {
		label := "false"
		if replaced {
			label = "true"
		}
		m.Registrations.WithLabelValues(point, label).Inc()
	}
}
