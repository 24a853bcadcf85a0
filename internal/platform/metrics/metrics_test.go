package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/greet/{name}", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("/greet/{name}", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("/greet/{name}", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/greet/{name}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/greet/{name}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestSetCatalogEntries(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetCatalogEntries("global", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CatalogEntries.WithLabelValues("global")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.StatusOK, time.Millisecond)
		m.SetCatalogEntries("global", 1)
	})
}
