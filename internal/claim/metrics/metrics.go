package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claim module.
type Metrics struct {
	ClaimsCreated      prometheus.Counter
	ClaimsTransitioned *prometheus.CounterVec
	ClaimsLiquidated   prometheus.Counter
	DocumentsAttached  prometheus.Counter
	VigencyBypasses    prometheus.Counter
	CreateDuration     prometheus.Histogram
}

// New creates a new Metrics instance with all claim module metrics registered.
func New() *Metrics {
	return &Metrics{
		ClaimsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_claims_created_total",
			Help: "Total number of claims admitted",
		}),
		ClaimsTransitioned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amparo_claims_transitioned_total",
			Help: "Total number of claim state transitions",
		}, []string{"to"}),
		ClaimsLiquidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_claims_liquidated_total",
			Help: "Total number of claims with a liquidation recorded",
		}),
		DocumentsAttached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_claim_documents_attached_total",
			Help: "Total number of documents attached to claims",
		}),
		VigencyBypasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_claim_vigency_bypasses_total",
			Help: "Total number of claims admitted through the commercial exception",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "amparo_claim_create_duration_seconds",
			Help:    "Duration of claim intake operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreate records the duration of a claim intake.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}
