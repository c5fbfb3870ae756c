// Package metrics provides Prometheus metrics for the paged node API
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nodeapi"

// Metrics holds all Prometheus metrics of the node API. A nil *Metrics
// records nothing.
type Metrics struct {
	// Paging metrics
	PagesServed    *prometheus.CounterVec
	ItemsServed    *prometheus.CounterVec
	PagesTruncated *prometheus.CounterVec
	PageDuration   *prometheus.HistogramVec

	// Error metrics
	RequestErrors *prometheus.CounterVec
	ServerErrors  *prometheus.CounterVec

	// Entity metadata cache
	EntityMetaCacheHits   prometheus.Counter
	EntityMetaCacheMisses prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_served_total",
			Help:      "Total number of pages served",
		}, []string{"endpoint"}),
		ItemsServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_served_total",
			Help:      "Total number of items served across all pages",
		}, []string{"endpoint"}),
		PagesTruncated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_with_continuation_total",
			Help:      "Total number of pages served with a continuation token",
		}, []string{"endpoint"}),
		PageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time spent building one page",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"endpoint"}),
		RequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of rejected requests by offending field",
		}, []string{"endpoint", "field"}),
		ServerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_errors_total",
			Help:      "Total number of requests failed by the server",
		}, []string{"endpoint"}),
		EntityMetaCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_meta_cache_hits_total",
			Help:      "Total number of entity metadata cache hits",
		}),
		EntityMetaCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_meta_cache_misses_total",
			Help:      "Total number of entity metadata cache misses",
		}),
	}
}

// ObservePage records one page served by endpoint.
func (m *Metrics) ObservePage(endpoint string, items int, hasMore bool, took time.Duration) {
	if m == nil {
		return
	}
	m.PagesServed.WithLabelValues(endpoint).Inc()
	m.ItemsServed.WithLabelValues(endpoint).Add(float64(items))
	if hasMore {
		m.PagesTruncated.WithLabelValues(endpoint).Inc()
	}
	m.PageDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// ObserveRequestError records a request rejected because of field.
func (m *Metrics) ObserveRequestError(endpoint, field string) {
	if m == nil {
		return
	}
	m.RequestErrors.WithLabelValues(endpoint, field).Inc()
}

// ObserveServerError records a request that failed server side.
func (m *Metrics) ObserveServerError(endpoint string) {
	if m == nil {
		return
	}
	m.ServerErrors.WithLabelValues(endpoint).Inc()
}

// ObserveCache records an entity metadata cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.EntityMetaCacheHits.Inc()
	} else {
		m.EntityMetaCacheMisses.Inc()
	}
}
