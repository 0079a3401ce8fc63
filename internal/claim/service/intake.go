package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/sha3"

	"amparo/internal/audit"
	"amparo/internal/claim/models"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/requestcontext"
)

const (
	// acceptedContentType is the only evidence format the intake accepts.
	acceptedContentType = "application/pdf"

	// evidenceContainer holds all claim evidence objects, keyed per claim.
	evidenceContainer = "claim-evidence"
)

// AttachDocument runs the two-phase document upload: blob write first, then
// the metadata insert. The phases are not transactional; a crash in between
// leaves an orphaned blob, which the intent sweeper reports. There is no
// compensating delete. Identical re-uploads are accepted, each with its own
// metadata row.
func (s *Service) AttachDocument(ctx context.Context, claimID id.ClaimID, docType, contentType string, body []byte) (*models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "claim.AttachDocument")
	defer span.End()

	if contentType != acceptedContentType {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"unsupported content type %q, only %s is accepted", contentType, acceptedContentType)
	}
	if len(body) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document body is empty")
	}
	if docType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document type is required")
	}

	claim, err := s.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status == models.ClaimStatusPaid {
		return nil, dErrors.New(dErrors.CodeInvalidTransition,
			"cannot attach documents to a paid claim")
	}

	digest := fmt.Sprintf("%x", sha3.Sum256(body))

	if s.intents != nil {
		if err := s.intents.Begin(ctx, claimID, digest, s.intentTTL); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record upload intent")
		}
	}

	if err := s.ensureContainer(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not provision evidence container")
	}

	docID := id.NewDocumentID()
	key := claimID.String() + "/" + docID.String() + ".pdf"
	url, err := s.blobs.PutObject(ctx, evidenceContainer, key, contentType, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not store document")
	}

	doc := &models.Document{
		ID:               docID,
		ClaimID:          claimID,
		Type:             docType,
		Digest:           digest,
		URL:              url,
		ValidationStatus: models.ValidationStatusPending,
		CreatedAt:        requestcontext.Now(ctx),
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record document metadata")
	}

	if s.intents != nil {
		// A failed clear is fine; the sweeper completes it on the next pass.
		_ = s.intents.Complete(ctx, claimID, digest)
	}

	s.auditor.Emit(ctx, audit.Event{
		Subject: claimID.String(),
		Action:  audit.ActionDocumentAttached,
		Reason:  docType,
	})
	if s.metrics != nil {
		s.metrics.DocumentsAttached.Inc()
	}
	return doc, nil
}

// ListDocuments returns the evidence attached to a claim.
func (s *Service) ListDocuments(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	if _, err := s.Get(ctx, claimID); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list documents")
	}
	return docs, nil
}

// ensureContainer provisions the evidence container on first use and remembers
// success, retrying on later uploads if provisioning failed.
func (s *Service) ensureContainer(ctx context.Context) error {
	s.containerMu.Lock()
	defer s.containerMu.Unlock()
	if s.containerReady {
		return nil
	}
	if err := s.blobs.EnsureContainer(ctx, evidenceContainer); err != nil {
		return err
	}
	s.containerReady = true
	return nil
}
