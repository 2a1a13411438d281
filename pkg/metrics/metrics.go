package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propdesk_http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	// ErrorsTotal counts failures handled by the error dispatcher
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_errors_total",
			Help: "Failures rendered by the error pipeline, by kind",
		},
		[]string{"kind"},
	)

	// BookingsCreated counts committed bookings
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propdesk_bookings_created_total",
		Help: "Bookings committed",
	})

	// PaymentsRecorded counts payments and their volume in minor units
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propdesk_payments_recorded_total",
		Help: "Payments recorded against bookings",
	})
	PaymentVolume = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propdesk_payment_volume_minor_units_total",
		Help: "Sum of recorded payment amounts in minor currency units",
	})

	// NotificationsFailed counts notifications that could not be published
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propdesk_notifications_failed_total",
			Help: "Booking notifications that failed to publish",
		},
		[]string{"type"},
	)
)

// Middleware records request count and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start).Milliseconds())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
