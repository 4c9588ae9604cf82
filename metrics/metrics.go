package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "table_reservation"

var (
	once sync.Once

	reservationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_attempts_total",
			Help:      "Booking attempts by result (created, conflict, rejected, error).",
		},
		[]string{"result"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Reservation status changes by source and target status.",
		},
		[]string{"from", "to"},
	)

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_queries_total",
			Help:      "Count of table availability queries served.",
		},
	)

	depositsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_confirmed_total",
			Help:      "Count of deposit payments applied to reservations.",
		},
	)

	waitlistChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_changes_total",
			Help:      "Waitlist entries added or moved to a status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationAttempts, statusTransitions, availabilityQueries,
			depositsConfirmed, waitlistChanges)
	})
}

func IncReservationAttempt(result string) {
	reservationAttempts.WithLabelValues(result).Inc()
}

func IncStatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func IncAvailabilityQuery() {
	availabilityQueries.Inc()
}

func IncDepositConfirmed() {
	depositsConfirmed.Inc()
}

func IncWaitlistChange(status string) {
	waitlistChanges.WithLabelValues(status).Inc()
}
