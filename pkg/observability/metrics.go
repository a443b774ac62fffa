package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service. Each collector owns
// a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Bus metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Evidence map metrics
	MapsSaved       prometheus.Counter
	NodesImported   prometheus.Counter
	NodesSkipped    prometheus.Counter
	DanglingEdges   prometheus.Counter
	ReportsRendered prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Commands and queries dispatched through the buses",
		}, []string{"kind", "name", "status"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Command and query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
		MapsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evidence_maps_saved_total",
			Help:      "Total number of evidence map saves",
		}),
		NodesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_imported_total",
			Help:      "Nodes added by import merges",
		}),
		NodesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_import_skipped_total",
			Help:      "Imported nodes skipped as duplicates",
		}),
		DanglingEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangling_edges_total",
			Help:      "Edges saved or imported with a missing endpoint",
		}),
		ReportsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "Total number of PDF reports rendered",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Operations,
		c.OperationDuration,
		c.MapsSaved,
		c.NodesImported,
		c.NodesSkipped,
		c.DanglingEdges,
		c.ReportsRendered,
		c.CacheHits,
		c.CacheMisses,
	)

	return c
}

// Handler exposes the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveOperation records one bus dispatch
func (c *Collector) ObserveOperation(kind, name string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.Operations.WithLabelValues(kind, name, status).Inc()
	c.OperationDuration.WithLabelValues(kind, name).Observe(time.Since(started).Seconds())
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) CacheHit()  { c.CacheHits.Inc() }
func (c *Collector) CacheMiss() { c.CacheMisses.Inc() }
