package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics of the server
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CatalogEntries  *prometheus.GaugeVec
}

// New creates and registers the server metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flywheel_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flywheel_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		CatalogEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flywheel_catalog_entries",
			Help: "Greeting catalog entries loaded per layer",
		}, []string{"layer"}),
	}
}

// ObserveRequest records one served request
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetCatalogEntries records how many catalog entries a layer holds
func (m *Metrics) SetCatalogEntries(layer string, n int) {
	if m == nil {
		return
	}
	m.CatalogEntries.WithLabelValues(layer).Set(float64(n))
}
