package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TFMV/graphpad/graph"
)

// Collector holds the Prometheus metrics for one server. It also observes
// the session, counting nodes, edges and rejected gestures as they happen.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	NodesCreated   prometheus.Counter
	EdgesCreated   prometheus.Counter
	EdgeRejections *prometheus.CounterVec
	StatsQueries   prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created by clicks",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_created_total",
			Help:      "Total number of edges created by drags",
		}),
		EdgeRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edge_rejections_total",
				Help:      "Total number of rejected edge drags by reason",
			},
			[]string{"reason"},
		),
		StatsQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_queries_total",
			Help:      "Total number of statistics queries",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.NodesCreated,
		c.EdgesCreated,
		c.EdgeRejections,
		c.StatsQueries,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RegisterGraphSize exports the current node and edge counts as gauges.
func (c *Collector) RegisterGraphSize(namespace string, counts func() (int, int)) {
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Current number of nodes",
		}, func() float64 {
			n, _ := counts()
			return float64(n)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Current number of edges",
		}, func() float64 {
			_, e := counts()
			return float64(e)
		}),
	)
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies by route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// NodeAdded implements interaction.Observer.
func (c *Collector) NodeAdded(graph.Node) { c.NodesCreated.Inc() }

// EdgeAdded implements interaction.Observer.
func (c *Collector) EdgeAdded(graph.Edge) { c.EdgesCreated.Inc() }

// Rejected implements interaction.Observer.
func (c *Collector) Rejected(reason error) {
	c.EdgeRejections.WithLabelValues(rejectionReason(reason)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, graph.ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, graph.ErrDuplicateEdge):
		return "duplicate"
	case errors.Is(err, graph.ErrUnknownNode):
		return "unknown_node"
	default:
		return "other"
	}
}
