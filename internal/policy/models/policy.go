package models

import (
	"time"

	id "amparo/pkg/domain"
)

// PolicyStatus is the lifecycle state of a policy. Status changes are driven
// by the external policy-management subsystem; the claims core only reads
// status and never invents new states.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
)

// Policy is the coverage contract claims are filed against. Owned by the
// policy-management subsystem: the core reads status, premium and copay
// configuration, and updates status only.
type Policy struct {
	ID             id.PolicyID
	HolderID       id.HolderID
	Status         PolicyStatus
	MonthlyPremium float64
	CoverageAmount float64
	CopayConfigID  *id.CopayConfigID
	ValidFrom      time.Time
	ValidTo        time.Time
	CreatedAt      time.Time
}

// IsActive reports whether the policy is in good standing statuswise.
func (p *Policy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// CopayConfig is the percentage split between institution and employee.
// Stored as a mutable administrative row and re-read on every evaluation.
type CopayConfig struct {
	ID             id.CopayConfigID
	InstitutionPct float64
}
