package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staylock_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staylock_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LocksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staylock_locks_created_total",
			Help: "Total number of availability locks created",
		},
	)

	LocksReleasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staylock_locks_released_total",
			Help: "Total number of availability lock releases",
		},
		[]string{"outcome"},
	)

	LocksExtendedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staylock_locks_extended_total",
			Help: "Total number of availability lock TTL extensions",
		},
	)

	CapacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staylock_capacity_rejections_total",
			Help: "Lock requests rejected because headroom was insufficient",
		},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staylock_bookings_total",
			Help: "Total number of booking attempts",
		},
		[]string{"status"},
	)

	PricingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staylock_pricing_request_duration_seconds",
			Help:    "Pricing quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLockCreated() {
	LocksCreatedTotal.Inc()
}

// RecordLockReleased tracks releases; outcome is "released", "consumed"
// (released by a successful booking) or "not_found".
func RecordLockReleased(outcome string) {
	LocksReleasedTotal.WithLabelValues(outcome).Inc()
}

func RecordLockExtended() {
	LocksExtendedTotal.Inc()
}

func RecordCapacityRejection() {
	CapacityRejectionsTotal.Inc()
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordPricingRequest(duration float64) {
	PricingRequestDuration.Observe(duration)
}
