package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 預約生命週期與逾時排程的計數器，由 /metrics 端點曝露
var (
	BookingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuspark_booking_events_total",
			Help: "Booking lifecycle transitions by event",
		},
		[]string{"event"}, // created / checked_in / completed / cancelled / expired
	)

	AutoCancelRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuspark_autocancel_runs_total",
			Help: "Total auto-cancel sweeper runs",
		},
	)

	AutoCancelChecked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuspark_autocancel_checked_total",
			Help: "Expired pending bookings examined by the sweeper",
		},
	)

	AutoCancelCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuspark_autocancel_cancelled_total",
			Help: "Bookings cancelled by the sweeper",
		},
	)

	AutoCancelFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuspark_autocancel_failures_total",
			Help: "Per-booking failures during sweeps",
		},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuspark_notification_failures_total",
			Help: "Best-effort notification deliveries that failed",
		},
	)
)
