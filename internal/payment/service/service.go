// Package service implements the payment ledger: premium registration with
// period uniqueness, and proactive generation of pending periods.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"amparo/internal/audit"
	paymentmetrics "amparo/internal/payment/metrics"
	"amparo/internal/payment/models"
	"amparo/internal/payment/split"
	"amparo/internal/payment/store"
	policystore "amparo/internal/policy/store"
	"amparo/internal/rules"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Service orchestrates the payment ledger.
type Service struct {
	policies policystore.Store
	payments store.Store
	rules    rules.Store
	auditor  *audit.Publisher
	metrics  *paymentmetrics.Metrics
	tracer   trace.Tracer
}

// New constructs the ledger service. metrics may be nil in tests.
func New(policies policystore.Store, payments store.Store, ruleStore rules.Store, auditor *audit.Publisher, metrics *paymentmetrics.Metrics) *Service {
	return &Service{
		policies: policies,
		payments: payments,
		rules:    ruleStore,
		auditor:  auditor,
		metrics:  metrics,
		tracer:   otel.Tracer("amparo/payment"),
	}
}

// RegisterRequest carries the input for an immediate premium payment.
type RegisterRequest struct {
	PolicyID id.PolicyID
	Amount   float64
	Month    int
	Year     int
}

func (r RegisterRequest) validate() error {
	if r.PolicyID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "policy id is required")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if r.Month < 1 || r.Month > 12 {
		return dErrors.New(dErrors.CodeInvalidInput, "month must be between 1 and 12")
	}
	if r.Year < 1900 {
		return dErrors.New(dErrors.CodeInvalidInput, "year is out of range")
	}
	return nil
}

// Register records a premium payment for a (policy, period). The amount must
// equal the policy's monthly premium exactly; a second payment for the same
// period returns conflict. The copay cutoff day is re-read from the rules
// store on every call.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "payment.Register")
	defer span.End()
	start := time.Now()

	if err := req.validate(); err != nil {
		return nil, err
	}

	policy, err := s.policies.FindByID(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load policy")
	}
	if !policy.IsActive() {
		return nil, dErrors.Newf(dErrors.CodeGuardBlocked, "policy is %s, payments require an active policy", policy.Status)
	}
	if req.Amount != policy.MonthlyPremium {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"amount must equal the monthly premium (%.2f)", policy.MonthlyPremium)
	}

	cutoff, err := s.rules.PaymentCutoffDay(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not read payment cutoff")
	}
	cfg, err := s.copayConfig(ctx, req.PolicyID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	breakdown := split.Split(req.Amount, cfg)
	payment := &models.Payment{
		ID:               id.NewPaymentID(),
		PolicyID:         req.PolicyID,
		Period:           models.Period{Month: req.Month, Year: req.Year},
		Amount:           req.Amount,
		EmployeeShare:    breakdown.EmployeeShare,
		InstitutionShare: breakdown.InstitutionShare,
		Extemporaneous:   split.IsExtemporaneous(now, cutoff),
		Status:           models.PaymentStatusPaid,
		PaidAt:           &now,
		CreatedAt:        now,
	}

	if err := s.payments.Insert(ctx, payment); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict,
				"a payment already exists for period %d/%d", req.Month, req.Year)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not insert payment")
	}

	s.auditor.Emit(ctx, audit.Event{
		Subject: payment.ID.String(),
		Action:  audit.ActionPaymentRegistered,
	})
	if s.metrics != nil {
		s.metrics.PaymentsRegistered.Inc()
		if payment.Extemporaneous {
			s.metrics.PaymentsExtemporaneous.Inc()
		}
		s.metrics.ObserveRegister(start)
	}
	return payment, nil
}

// GeneratePending walks the policy's monthly periods from its validity start
// through min(validity end, today) and creates a pending row for every period
// that lacks one. Idempotent: a second run creates nothing new.
func (s *Service) GeneratePending(ctx context.Context, policyID id.PolicyID) ([]*models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "payment.GeneratePending")
	defer span.End()

	if policyID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy id is required")
	}

	policy, err := s.policies.FindByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load policy")
	}
	// A zero validity start would make the period walk open-ended.
	if policy.ValidFrom.IsZero() {
		return nil, dErrors.New(dErrors.CodeInternal, "policy has no validity start")
	}

	existing, err := s.payments.ListPeriods(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list payment periods")
	}
	have := make(map[models.Period]bool, len(existing))
	for _, p := range existing {
		have[p] = true
	}

	cfg, err := s.copayConfig(ctx, policyID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	end := models.PeriodOf(now)
	if !policy.ValidTo.IsZero() {
		if policyEnd := models.PeriodOf(policy.ValidTo); policyEnd.Before(end) {
			end = policyEnd
		}
	}

	breakdown := split.Split(policy.MonthlyPremium, cfg)
	var missing []*models.Payment
	for period := models.PeriodOf(policy.ValidFrom); !end.Before(period); period = period.Next() {
		if have[period] {
			continue
		}
		missing = append(missing, &models.Payment{
			ID:               id.NewPaymentID(),
			PolicyID:         policyID,
			Period:           period,
			Amount:           policy.MonthlyPremium,
			EmployeeShare:    breakdown.EmployeeShare,
			InstitutionShare: breakdown.InstitutionShare,
			Status:           models.PaymentStatusPending,
			CreatedAt:        now,
		})
	}
	if len(missing) == 0 {
		return nil, nil
	}

	inserted, err := s.payments.InsertPending(ctx, missing)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not insert pending payments")
	}

	s.auditor.Emit(ctx, audit.Event{
		Subject: policyID.String(),
		Action:  audit.ActionPendingGenerated,
	})
	if s.metrics != nil {
		s.metrics.PendingGenerated.Add(float64(len(inserted)))
	}
	return inserted, nil
}

// Split exposes the pure calculator against the policy's stored copay config,
// for callers that want the division without registering anything.
func (s *Service) Split(ctx context.Context, policyID id.PolicyID, amount float64) (split.Breakdown, error) {
	if amount < 0 {
		return split.Breakdown{}, dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}
	cfg, err := s.copayConfig(ctx, policyID)
	if err != nil {
		return split.Breakdown{}, err
	}
	return split.Split(amount, cfg), nil
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
