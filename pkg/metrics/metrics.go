package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type OrderMetrics struct {
	OrdersCreated       prometheus.Counter
	OrdersCanceled      prometheus.Counter
	ReservationFailures prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
}

func NewOrderMetrics() *OrderMetrics {
	m := &OrderMetrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrisales",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders successfully assembled and persisted.",
		}),
		OrdersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrisales",
			Subsystem: "orders",
			Name:      "canceled_total",
			Help:      "Orders canceled through the direct cancellation path.",
		}),
		ReservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrisales",
			Subsystem: "inventory",
			Name:      "reservation_failures_total",
			Help:      "Stock reservations rejected for insufficient stock.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrisales",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Committed order status transitions by target status.",
		}, []string{"target"}),
	}
	prometheus.MustRegister(m.OrdersCreated, m.OrdersCanceled, m.ReservationFailures, m.StatusTransitions)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
