package models

import (
	"time"

	id "amparo/pkg/domain"
)

// PaymentStatus is the lifecycle state of a premium payment row.
type PaymentStatus string

const (
	// PaymentStatusPaid marks an immediately registered payment.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusPending marks a proactively generated expectation row for
	// a period that has no registered payment yet.
	PaymentStatusPending PaymentStatus = "pending"
)

// Period is a (month, year) billing period.
type Period struct {
	Month int
	Year  int
}

// Before reports whether p is an earlier billing period than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Next returns the following billing period.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// PeriodOf extracts the billing period of a date.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Payment is a premium payment (or the pending expectation of one) for a
// policy and billing period. Rows are never deleted; at most one exists per
// (policy, period), enforced by the storage layer.
type Payment struct {
	ID               id.PaymentID
	PolicyID         id.PolicyID
	Period           Period
	Amount           float64
	EmployeeShare    float64
	InstitutionShare float64
	Extemporaneous   bool
	Status           PaymentStatus
	PaidAt           *time.Time
	CreatedAt        time.Time
}
