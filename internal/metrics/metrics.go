package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgc",
			Name:      "reservations_total",
			Help:      "Count of slot reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgc",
			Name:      "registrations_total",
			Help:      "Count of provider registration attempts by outcome.",
		},
		[]string{"outcome"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgc",
			Name:      "logins_total",
			Help:      "Count of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	storeRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sgc",
			Name:      "store_repairs_total",
			Help:      "Count of canonical store files created or promoted by the resolver.",
		},
		[]string{"kind"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservations, registrations, logins, storeRepairs)
	})
}

func IncReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

func IncRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

func IncLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

func IncStoreRepair(kind string) {
	storeRepairs.WithLabelValues(kind).Inc()
}
