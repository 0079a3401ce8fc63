package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the payment module.
type Metrics struct {
	PaymentsRegistered     prometheus.Counter
	PaymentsExtemporaneous prometheus.Counter
	PendingGenerated       prometheus.Counter
	RegisterDuration       prometheus.Histogram
}

// New creates a new Metrics instance with all payment module metrics registered.
func New() *Metrics {
	return &Metrics{
		PaymentsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_payments_registered_total",
			Help: "Total number of premium payments registered",
		}),
		PaymentsExtemporaneous: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_payments_extemporaneous_total",
			Help: "Total number of payments registered after the monthly cutoff",
		}),
		PendingGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_payments_pending_generated_total",
			Help: "Total number of pending payment rows generated",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "amparo_payment_register_duration_seconds",
			Help:    "Duration of payment registration operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRegister records the duration of a Register operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
