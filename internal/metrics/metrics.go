package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Admission outcomes used as the "outcome" label.
const (
	OutcomeCreated     = "created"
	OutcomeUnavailable = "unavailable"
	OutcomeConflict    = "conflict"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeStoreError  = "store_error"
)

// Notification results used as the "result" label.
const (
	NotificationPublished     = "published"
	NotificationPublishFailed = "publish_failed"
	NotificationMailed        = "mailed"
	NotificationMailFailed    = "mail_failed"
)

var (
	once sync.Once

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel_booking",
			Name:      "admission_total",
			Help:      "Booking admission decisions by outcome.",
		},
		[]string{"outcome"},
	)

	commitRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotel_booking",
			Name:      "commit_retry_total",
			Help:      "Booking attempts retried after losing a commit race.",
		},
	)

	paymentsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotel_booking",
			Name:      "payment_confirmed_total",
			Help:      "Reservations moved from UNPAID to PAID.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel_booking",
			Name:      "notification_total",
			Help:      "Booking confirmation deliveries by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(admissions, commitRetries, paymentsConfirmed, notifications)
	})
}

func IncAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func IncCommitRetry() {
	commitRetries.Inc()
}

func IncPaymentConfirmed() {
	paymentsConfirmed.Inc()
}

// IncNotification counts one step of confirmation delivery.
func IncNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}
