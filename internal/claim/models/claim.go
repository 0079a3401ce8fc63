package models

import (
	"strings"
	"time"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

// ClaimStatus is the claim's position in the adjudication workflow.
//
// Invariants:
//   - reported -> in_process -> paid is the only path; no edge goes backward
//     or skips a state, and paid is terminal
//   - a claim cannot reach in_process with zero attached documents
//     (enforced at the service layer, which owns the document count)
type ClaimStatus string

const (
	ClaimStatusReported  ClaimStatus = "reported"
	ClaimStatusInProcess ClaimStatus = "in_process"
	ClaimStatusPaid      ClaimStatus = "paid"
)

// ParseClaimStatus validates a caller-supplied target state.
func ParseClaimStatus(raw string) (ClaimStatus, error) {
	switch ClaimStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ClaimStatusReported:
		return ClaimStatusReported, nil
	case ClaimStatusInProcess:
		return ClaimStatusInProcess, nil
	case ClaimStatusPaid:
		return ClaimStatusPaid, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown claim status %q", raw)
	}
}

// CanTransitionTo reports whether next is the immediate successor of s.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	switch s {
	case ClaimStatusReported:
		return next == ClaimStatusInProcess
	case ClaimStatusInProcess:
		return next == ClaimStatusPaid
	default:
		return false
	}
}

// Claim is a reported siniestro against a policy.
type Claim struct {
	ID                id.ClaimID
	PolicyID          id.PolicyID
	DeceasedID        string
	IncidentDate      time.Time
	ReportedAt        time.Time
	Status            ClaimStatus
	Cause             string
	LiquidationAmount *float64
	LiquidationDate   *time.Time
	Extemporaneous    bool
	CreatedAt         time.Time
}

// CanTransition checks the requested edge against the state machine. Returns
// an invalid_transition error naming both states when the edge does not exist.
func (c *Claim) CanTransition(target ClaimStatus) error {
	if !c.Status.CanTransitionTo(target) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition claim from %s to %s", c.Status, target)
	}
	return nil
}

// NewClaim validates intake input and builds the initial reported claim.
func NewClaim(claimID id.ClaimID, policyID id.PolicyID, deceasedID string, incidentDate time.Time, cause string, now time.Time) (*Claim, error) {
	deceasedID = strings.TrimSpace(deceasedID)
	if deceasedID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "deceased identifier is required")
	}
	if incidentDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "incident date is required")
	}
	if incidentDate.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "incident date cannot be in the future")
	}
	return &Claim{
		ID:           claimID,
		PolicyID:     policyID,
		DeceasedID:   deceasedID,
		IncidentDate: incidentDate,
		ReportedAt:   now,
		Status:       ClaimStatusReported,
		Cause:        strings.TrimSpace(cause),
		CreatedAt:    now,
	}, nil
}
