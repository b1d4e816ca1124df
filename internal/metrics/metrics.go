package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "telesync"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	liveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "signal_connections",
		Help:      "Currently registered signaling connections",
	})

	envelopes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signal_envelopes_total",
		Help:      "Inbound envelopes dispatched, by type",
	}, []string{"type"})

	dropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signal_envelopes_dropped_total",
		Help:      "Inbound envelopes dropped, by type and reason",
	}, []string{"type", "reason"})

	deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signal_deliveries_total",
		Help:      "Outbound frames written, by type and result",
	}, []string{"type", "result"})
)

func ConnectionOpened() { liveConnections.Inc() }
func ConnectionClosed() { liveConnections.Dec() }

func EnvelopeDispatched(typ string) { envelopes.WithLabelValues(typ).Inc() }

func EnvelopeDropped(typ, reason string) { dropped.WithLabelValues(typ, reason).Inc() }

func Delivered(typ string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	deliveries.WithLabelValues(typ, result).Inc()
}

// Middleware records request metrics with Prometheus labels. Unmatched
// routes share one path label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
