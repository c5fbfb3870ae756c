package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/blockberries/nodeapi/metrics"
)

func TestObservePage(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.ObservePage("entity_iterator", 10, true, 5*time.Millisecond)
	m.ObservePage("entity_iterator", 3, false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesServed.WithLabelValues("entity_iterator")))
	assert.Equal(t, 13.0, testutil.ToFloat64(m.ItemsServed.WithLabelValues("entity_iterator")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTruncated.WithLabelValues("entity_iterator")))
}

func TestObserveErrorsAndCache(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.ObserveRequestError("kv_store_iterator", "continuation_token")
	m.ObserveServerError("kv_store_iterator")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestErrors.WithLabelValues("kv_store_iterator", "continuation_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServerErrors.WithLabelValues("kv_store_iterator")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntityMetaCacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntityMetaCacheMisses))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.ObservePage("x", 1, true, time.Millisecond)
	m.ObserveRequestError("x", "y")
	m.ObserveServerError("x")
	m.ObserveCache(true)
}

func TestSeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	metrics.NewMetrics(prometheus.NewRegistry())
	metrics.NewMetrics(prometheus.NewRegistry())
}
