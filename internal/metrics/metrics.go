package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	catalogLoadsTotal  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking attempts by flow and result",
		}, []string{"flow", "result"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "booking",
			Name:      "notifications_total",
			Help:      "Booking notifications by delivery result",
		}, []string{"result"}),
		catalogLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Catalog resource loads by source actually used",
		}, []string{"resource", "source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.notificationsTotal, m.catalogLoadsTotal)
	return m
}

// ObserveBooking records a booking attempt. result is "created" or the
// validation kind that rejected it.
func (m *BookingMetrics) ObserveBooking(flow, result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(flow, result).Inc()
}

func (m *BookingMetrics) ObserveNotification(delivered bool) {
	if m == nil {
		return
	}
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.notificationsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveCatalogLoad(resource, source string) {
	if m == nil {
		return
	}
	m.catalogLoadsTotal.WithLabelValues(resource, source).Inc()
}
