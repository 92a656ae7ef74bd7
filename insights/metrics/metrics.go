package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
)

const namespace = "audience_pulse"

// Collector owns a private registry so several collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	recordsTotal    *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	analyzeDuration prometheus.Histogram
	notAttempted    prometheus.Gauge
	lastRun         *prometheus.GaugeVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Analyzed records by outcome",
		},
		[]string{"outcome"},
	)
	c.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_failures_total",
			Help:      "Model service failures by class",
		},
		[]string{"class"},
	)
	c.analyzeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Per-record analysis latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
	c.notAttempted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_not_attempted",
			Help:      "Records skipped because the batch was canceled",
		},
	)
	c.lastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_last_run_timestamp_seconds",
			Help:      "Unix time a stage last finished",
		},
		[]string{"stage"},
	)
	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	c.registry.MustRegister(
		c.recordsTotal,
		c.failuresTotal,
		c.analyzeDuration,
		c.notAttempted,
		c.lastRun,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveOutcome records one finished record. It matches insights.BatchOptions.Observer.
func (c *Collector) ObserveOutcome(o insights.Outcome) {
	c.analyzeDuration.Observe(o.Duration.Seconds())
	if o.Err == nil {
		c.recordsTotal.WithLabelValues("ok").Inc()
		return
	}
	var ae *insights.AnalysisError
	if errors.As(o.Err, &ae) {
		c.recordsTotal.WithLabelValues(string(ae.Kind)).Inc()
		if ae.Kind == insights.ServiceFailure && ae.Class != "" {
			c.failuresTotal.WithLabelValues(string(ae.Class)).Inc()
		}
		return
	}
	c.recordsTotal.WithLabelValues("error").Inc()
}

func (c *Collector) SetNotAttempted(n int) { c.notAttempted.Set(float64(n)) }

func (c *Collector) StageFinished(stage string, at time.Time) {
	c.lastRun.WithLabelValues(stage).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Middleware returns middleware that collects HTTP metrics
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, endpoint, status).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry over HTTP.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
