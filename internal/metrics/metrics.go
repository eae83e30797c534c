// Package metrics collects and exposes Prometheus metrics for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the HTTP middleware records through.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordBooking(warnings int)
	RecordTransition(target string)
	RecordBulkCompletion(count int)
}

// Collector implements Recorder on a Prometheus registry.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bookings        prometheus.Counter
	bookingWarnings prometheus.Counter
	transitions     *prometheus.CounterVec
	bulkCompleted   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mentorhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorhub_bookings_total",
			Help: "Sessions booked.",
		}),
		bookingWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorhub_booking_conflict_warnings_total",
			Help: "Conflict warnings surfaced on bookings.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorhub_session_transitions_total",
			Help: "Session lifecycle transitions by target status.",
		}, []string{"target"}),
		bulkCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorhub_sessions_bulk_completed_total",
			Help: "Sessions completed through the bulk path.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.bookings,
		c.bookingWarnings,
		c.transitions,
		c.bulkCompleted,
	)

	return c
}

// RecordRequest counts one finished HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordBooking counts one booking and its conflict warnings.
func (c *Collector) RecordBooking(warnings int) {
	c.bookings.Inc()
	c.bookingWarnings.Add(float64(warnings))
}

// RecordTransition counts one lifecycle transition.
func (c *Collector) RecordTransition(target string) {
	c.transitions.WithLabelValues(target).Inc()
}

// RecordBulkCompletion counts sessions completed in one bulk call.
func (c *Collector) RecordBulkCompletion(count int) {
	c.bulkCompleted.Add(float64(count))
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
