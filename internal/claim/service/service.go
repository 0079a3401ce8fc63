// Package service implements the claim workflow: guarded intake, the
// document-gated state machine, and liquidation recording.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"amparo/internal/audit"
	"amparo/internal/blob"
	claimmetrics "amparo/internal/claim/metrics"
	"amparo/internal/claim/models"
	"amparo/internal/claim/store"
	"amparo/internal/eligibility"
	"amparo/internal/intake/intent"
	"amparo/internal/payment/split"
	policystore "amparo/internal/policy/store"
	"amparo/internal/rules"
	"amparo/internal/vigency"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Service orchestrates claim intake and adjudication.
type Service struct {
	claims      store.ClaimStore
	documents   store.DocumentStore
	policies    policystore.Store
	vigency     *vigency.Guard
	eligibility *eligibility.Guard
	rules       rules.Store
	blobs       blob.Store
	intents     intent.Store
	auditor     *audit.Publisher
	metrics     *claimmetrics.Metrics
	intentTTL   time.Duration
	tracer      trace.Tracer

	containerMu    sync.Mutex
	containerReady bool
}

// Config carries the service's collaborators. Intents and Metrics may be nil;
// document uploads then skip write-ahead markers and instrumentation.
type Config struct {
	Claims      store.ClaimStore
	Documents   store.DocumentStore
	Policies    policystore.Store
	Vigency     *vigency.Guard
	Eligibility *eligibility.Guard
	Rules       rules.Store
	Blobs       blob.Store
	Intents     intent.Store
	Auditor     *audit.Publisher
	Metrics     *claimmetrics.Metrics
	IntentTTL   time.Duration
}

// New constructs the claim service.
func New(cfg Config) *Service {
	return &Service{
		claims:      cfg.Claims,
		documents:   cfg.Documents,
		policies:    cfg.Policies,
		vigency:     cfg.Vigency,
		eligibility: cfg.Eligibility,
		rules:       cfg.Rules,
		blobs:       cfg.Blobs,
		intents:     cfg.Intents,
		auditor:     cfg.Auditor,
		metrics:     cfg.Metrics,
		intentTTL:   cfg.IntentTTL,
		tracer:      otel.Tracer("amparo/claim"),
	}
}

// CreateRequest carries the input for claim intake. CommercialException
// bypasses the vigency guard only; account standing is always enforced.
type CreateRequest struct {
	PolicyID            id.PolicyID
	DeceasedID          string
	IncidentDate        time.Time
	Cause               string
	CommercialException bool
}

// Create admits a new claim. Account standing is checked unconditionally; the
// validity-period window is checked unless the commercial exception applies,
// and every bypass leaves an audit event. A duplicate (policy, deceased,
// incident date) returns conflict.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Claim, error) {
	ctx, span := s.tracer.Start(ctx, "claim.Create")
	defer span.End()
	start := time.Now()

	if req.PolicyID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy id is required")
	}

	standing, err := s.eligibility.Check(ctx, req.PolicyID)
	if err != nil {
		return nil, err
	}
	if err := standing.Err(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if req.CommercialException {
		s.auditor.Emit(ctx, audit.Event{
			Subject: req.PolicyID.String(),
			Action:  audit.ActionVigencyBypassed,
			Reason:  "commercial exception",
		})
		if s.metrics != nil {
			s.metrics.VigencyBypasses.Inc()
		}
	} else {
		if _, err := s.vigency.AdmissionPeriod(ctx, now); err != nil {
			return nil, err
		}
	}

	claim, err := models.NewClaim(id.NewClaimID(), req.PolicyID, req.DeceasedID, req.IncidentDate, req.Cause, now)
	if err != nil {
		return nil, err
	}

	cutoff, err := s.rules.PaymentCutoffDay(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not read cutoff rule")
	}
	claim.Extemporaneous = split.IsExtemporaneous(now, cutoff)

	if err := s.claims.Create(ctx, claim); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict,
				"a claim already exists for this policy, deceased and incident date")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create claim")
	}

	s.auditor.Emit(ctx, audit.Event{
		Subject: claim.ID.String(),
		Action:  audit.ActionClaimCreated,
	})
	if s.metrics != nil {
		s.metrics.ClaimsCreated.Inc()
		s.metrics.ObserveCreate(start)
	}
	return claim, nil
}

// Get loads a claim by id.
func (s *Service) Get(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load claim")
	}
	return claim, nil
}

// Transition moves a claim one step along reported -> in_process -> paid.
// Entering in_process requires at least one attached document, whatever its
// validation status. The store write is conditional on the observed status, so
// racing transitions resolve to one winner and one conflict.
func (s *Service) Transition(ctx context.Context, claimID id.ClaimID, target models.ClaimStatus) (*models.Claim, error) {
	ctx, span := s.tracer.Start(ctx, "claim.Transition")
	defer span.End()

	claim, err := s.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := claim.CanTransition(target); err != nil {
		return nil, err
	}

	if target == models.ClaimStatusInProcess {
		count, err := s.documents.CountByClaim(ctx, claimID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not count documents")
		}
		if count == 0 {
			return nil, dErrors.New(dErrors.CodeInvalidTransition,
				"claim needs at least one document before processing")
		}
	}

	if err := s.claims.UpdateStatus(ctx, claimID, claim.Status, target); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "claim was modified concurrently")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not update claim status")
	}
	claim.Status = target

	s.auditor.Emit(ctx, audit.Event{
		Subject: claim.ID.String(),
		Action:  audit.ActionClaimTransitioned,
		Reason:  string(target),
	})
	if s.metrics != nil {
		s.metrics.ClaimsTransitioned.WithLabelValues(string(target)).Inc()
	}
	return claim, nil
}

// Liquidation is the recorded payout with its copay division.
type Liquidation struct {
	ClaimID          id.ClaimID
	Amount           float64
	Date             time.Time
	InstitutionShare float64
	EmployeeShare    float64
}

// SetLiquidation records the payout amount and date on a claim that is in
// process or already paid, returning the copay division of the amount under
// the policy's configuration. Recording is out of band with respect to the
// state machine: it does not transition the claim.
func (s *Service) SetLiquidation(ctx context.Context, claimID id.ClaimID, amount float64, date time.Time) (*Liquidation, error) {
	ctx, span := s.tracer.Start(ctx, "claim.SetLiquidation")
	defer span.End()

	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "liquidation amount must be positive")
	}
	if date.IsZero() {
		date = requestcontext.Now(ctx)
	}

	claim, err := s.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status == models.ClaimStatusReported {
		return nil, dErrors.New(dErrors.CodeInvalidTransition,
			"liquidation requires a claim in process or paid")
	}

	cfg, err := s.copayConfig(ctx, claim.PolicyID)
	if err != nil {
		return nil, err
	}
	breakdown := split.Split(amount, cfg)

	if err := s.claims.SetLiquidation(ctx, claimID, amount, date); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record liquidation")
	}

	s.auditor.Emit(ctx, audit.Event{
		Subject: claim.ID.String(),
		Action:  audit.ActionClaimLiquidated,
	})
	if s.metrics != nil {
		s.metrics.ClaimsLiquidated.Inc()
	}
	return &Liquidation{
		ClaimID:          claimID,
		Amount:           amount,
		Date:             date,
		InstitutionShare: breakdown.InstitutionShare,
		EmployeeShare:    breakdown.EmployeeShare,
	}, nil
}

// copayConfig loads the policy's copay row, translating "none assigned" into
// the nil config the calculator treats as employee-only.
func (s *Service) copayConfig(ctx context.Context, policyID id.PolicyID) (*split.Config, error) {
	cfg, err := s.policies.FindCopayConfig(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load copay config")
	}
	return &split.Config{InstitutionPct: cfg.InstitutionPct}, nil
}
