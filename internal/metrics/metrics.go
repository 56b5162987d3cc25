package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "complexcare",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complexcare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "complexcare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	dmdLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complexcare",
			Subsystem: "dmd",
			Name:      "lookups_total",
			Help:      "dm+d lookups by the source that answered them.",
		},
		[]string{"kind", "source"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "complexcare",
			Subsystem: "credentials",
			Name:      "reminders_sent_total",
			Help:      "Credential expiry reminders written as notifications.",
		},
	)

	demoFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "complexcare",
			Subsystem: "demo",
			Name:      "fallbacks_total",
			Help:      "Responses served from demo data after a database failure.",
		},
		[]string{"resource"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		dmdLookups,
		remindersSent,
		demoFallbacks,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route, so path
// parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordDMDLookup(kind, source string) {
	dmdLookups.WithLabelValues(kind, source).Inc()
}

func RecordRemindersSent(n int) {
	remindersSent.Add(float64(n))
}

func RecordDemoFallback(resource string) {
	demoFallbacks.WithLabelValues(resource).Inc()
}
