package models

import (
	"time"

	id "amparo/pkg/domain"
)

// ValidationStatus is the reviewer's verdict on a document. Set to pending at
// intake; only an external reviewer moves it afterwards.
type ValidationStatus string

const (
	ValidationStatusPending  ValidationStatus = "pending"
	ValidationStatusApproved ValidationStatus = "approved"
	ValidationStatusRejected ValidationStatus = "rejected"
)

// Document is one piece of claim evidence. Created once per upload and never
// mutated except for the reviewer-owned validation status. The digest is
// tamper evidence over the raw bytes, not a deduplication key: identical
// re-uploads are accepted.
type Document struct {
	ID               id.DocumentID
	ClaimID          id.ClaimID
	Type             string
	Digest           string
	URL              string
	ValidationStatus ValidationStatus
	CreatedAt        time.Time
}
