// Package split computes the institution/employee division of a monetary
// amount and classifies payment temporality. Pure functions, no stores.
package split

import (
	"math"
	"time"
)

// DefaultCutoffDay is the day-of-month after which a payment counts as
// extemporaneous, used when no administrative override row exists.
const DefaultCutoffDay = 5

// Config is the copay percentage applied to the institution side.
type Config struct {
	InstitutionPct float64
}

// Breakdown is the exact division of a total. InstitutionShare and
// EmployeeShare always sum back to the input total.
type Breakdown struct {
	InstitutionShare float64
	EmployeeShare    float64
}

// Split divides total between institution and employee. The institution share
// is rounded to cents; the employee share is the remainder, so the two always
// reconstruct the total exactly instead of each rounding independently.
//
// A nil config means no copay arrangement exists: the employee carries 100%.
// That fallback is an explicit fail-safe rather than a silent zero amount.
func Split(total float64, cfg *Config) Breakdown {
	if cfg == nil {
		return Breakdown{InstitutionShare: 0, EmployeeShare: total}
	}
	institution := round2(total * cfg.InstitutionPct)
	return Breakdown{
		InstitutionShare: institution,
		EmployeeShare:    round2(total - institution),
	}
}

// IsExtemporaneous reports whether a payment registered on date falls after
// the monthly cutoff day. Feeds temporality classification for payroll
// reporting.
func IsExtemporaneous(date time.Time, cutoffDay int) bool {
	return date.Day() > cutoffDay
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
