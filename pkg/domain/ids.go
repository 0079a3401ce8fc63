// Package domain holds the typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so the compiler rejects a
// PolicyID where a ClaimID is expected. ParseXxxID functions enforce the
// trust-boundary invariant: ids must be valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "amparo/pkg/domain-errors"
)

type (
	// PolicyID identifies an insurance policy.
	PolicyID uuid.UUID
	// ClaimID identifies a claim (siniestro).
	ClaimID uuid.UUID
	// DocumentID identifies a piece of claim evidence.
	DocumentID uuid.UUID
	// PaymentID identifies a premium payment row.
	PaymentID uuid.UUID
	// PeriodID identifies an administrative validity period.
	PeriodID uuid.UUID
	// HolderID identifies a policy holder (owned by the policy subsystem).
	HolderID uuid.UUID
	// CopayConfigID identifies a copay percentage configuration row.
	CopayConfigID uuid.UUID
)

func (id PolicyID) String() string      { return uuid.UUID(id).String() }
func (id ClaimID) String() string       { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id PaymentID) String() string     { return uuid.UUID(id).String() }
func (id PeriodID) String() string      { return uuid.UUID(id).String() }
func (id HolderID) String() string      { return uuid.UUID(id).String() }
func (id CopayConfigID) String() string { return uuid.UUID(id).String() }

func (id PolicyID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// NewPolicyID returns a fresh random PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewClaimID returns a fresh random ClaimID.
func NewClaimID() ClaimID { return ClaimID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewPaymentID returns a fresh random PaymentID.
func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }

// NewPeriodID returns a fresh random PeriodID.
func NewPeriodID() PeriodID { return PeriodID(uuid.New()) }

func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid uuid", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil uuid", what)
	}
	return u, nil
}

// ParsePolicyID validates and converts a raw string into a PolicyID.
func ParsePolicyID(raw string) (PolicyID, error) {
	u, err := parseUUID(raw, "policy id")
	return PolicyID(u), err
}

// ParseClaimID validates and converts a raw string into a ClaimID.
func ParseClaimID(raw string) (ClaimID, error) {
	u, err := parseUUID(raw, "claim id")
	return ClaimID(u), err
}

// ParseDocumentID validates and converts a raw string into a DocumentID.
func ParseDocumentID(raw string) (DocumentID, error) {
	u, err := parseUUID(raw, "document id")
	return DocumentID(u), err
}

// ParsePaymentID validates and converts a raw string into a PaymentID.
func ParsePaymentID(raw string) (PaymentID, error) {
	u, err := parseUUID(raw, "payment id")
	return PaymentID(u), err
}
