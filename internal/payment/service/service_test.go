package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"amparo/internal/audit"
	paymentmodels "amparo/internal/payment/models"
	paymentstore "amparo/internal/payment/store"
	"amparo/internal/platform/logger"
	policymodels "amparo/internal/policy/models"
	policystore "amparo/internal/policy/store"
	"amparo/internal/rules"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/requestcontext"
)

type LedgerSuite struct {
	suite.Suite
	policies *policystore.InMemoryStore
	payments *paymentstore.InMemoryStore
	rules    *rules.InMemoryStore
	audits   *audit.InMemoryStore
	service  *Service
	policyID id.PolicyID
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.policies = policystore.NewMemory()
	s.payments = paymentstore.NewMemory()
	s.rules = rules.NewMemory()
	s.audits = audit.NewMemory()
	s.service = New(s.policies, s.payments, s.rules,
		audit.NewPublisher(s.audits, logger.New()), nil)

	s.policyID = id.NewPolicyID()
	s.policies.Seed(&policymodels.Policy{
		ID:             s.policyID,
		Status:         policymodels.PolicyStatusActive,
		MonthlyPremium: 120,
		ValidFrom:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:        time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
}

// ctxAt pins the request clock so temporality and period math are
// deterministic.
func (s *LedgerSuite) ctxAt(day int) context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2026, time.March, day, 10, 0, 0, 0, time.UTC))
}

func (s *LedgerSuite) register(ctx context.Context, month int) (*paymentmodels.Payment, error) {
	return s.service.Register(ctx, RegisterRequest{
		PolicyID: s.policyID,
		Amount:   120,
		Month:    month,
		Year:     2026,
	})
}

func (s *LedgerSuite) TestRegister() {
	s.Run("succeeds once then conflicts on the same period", func() {
		ctx := s.ctxAt(3)
		payment, err := s.register(ctx, 3)
		s.Require().NoError(err)
		s.Equal(paymentmodels.PaymentStatusPaid, payment.Status)

		_, err = s.register(ctx, 3)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("amount must equal the premium exactly", func() {
		_, err := s.service.Register(s.ctxAt(3), RegisterRequest{
			PolicyID: s.policyID, Amount: 119.99, Month: 4, Year: 2026,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("inactive policy is blocked", func() {
		cancelled := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID: cancelled, Status: policymodels.PolicyStatusCancelled, MonthlyPremium: 120,
		})
		_, err := s.service.Register(s.ctxAt(3), RegisterRequest{
			PolicyID: cancelled, Amount: 120, Month: 3, Year: 2026,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})

	s.Run("unknown policy is not found", func() {
		_, err := s.service.Register(s.ctxAt(3), RegisterRequest{
			PolicyID: id.NewPolicyID(), Amount: 120, Month: 3, Year: 2026,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("emits an audit event", func() {
		payment, err := s.register(s.ctxAt(3), 7)
		s.Require().NoError(err)
		events, err := s.audits.ListBySubject(context.Background(), payment.ID.String())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionPaymentRegistered, events[0].Action)
	})
}

func (s *LedgerSuite) TestRegisterTemporality() {
	s.Run("on the cutoff day is timely", func() {
		payment, err := s.register(s.ctxAt(5), 1)
		s.Require().NoError(err)
		s.False(payment.Extemporaneous)
	})

	s.Run("after the cutoff day is extemporaneous", func() {
		payment, err := s.register(s.ctxAt(6), 2)
		s.Require().NoError(err)
		s.True(payment.Extemporaneous)
	})

	s.Run("admin cutoff override is re-read per call", func() {
		s.rules.SetPaymentCutoffDay(10)
		payment, err := s.register(s.ctxAt(6), 9)
		s.Require().NoError(err)
		s.False(payment.Extemporaneous)
	})
}

func (s *LedgerSuite) TestRegisterSplit() {
	s.Run("no copay config means employee pays all", func() {
		payment, err := s.register(s.ctxAt(3), 1)
		s.Require().NoError(err)
		s.Equal(0.0, payment.InstitutionShare)
		s.Equal(120.0, payment.EmployeeShare)
	})

	s.Run("copay config splits the premium", func() {
		cfgID := id.CopayConfigID(uuid.New())
		withCopay := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID:             withCopay,
			Status:         policymodels.PolicyStatusActive,
			MonthlyPremium: 100,
			CopayConfigID:  &cfgID,
		})
		s.policies.SeedCopayConfig(&policymodels.CopayConfig{ID: cfgID, InstitutionPct: 0.7})

		payment, err := s.service.Register(s.ctxAt(3), RegisterRequest{
			PolicyID: withCopay, Amount: 100, Month: 3, Year: 2026,
		})
		s.Require().NoError(err)
		s.Equal(70.0, payment.InstitutionShare)
		s.Equal(30.0, payment.EmployeeShare)
	})
}

func (s *LedgerSuite) TestGeneratePending() {
	// Policy runs from January; request clock is March, so three elapsed
	// periods: 1/2026, 2/2026, 3/2026.
	ctx := s.ctxAt(15)

	s.Run("creates one pending row per elapsed period", func() {
		created, err := s.service.GeneratePending(ctx, s.policyID)
		s.Require().NoError(err)
		s.Require().Len(created, 3)
		for i, payment := range created {
			s.Equal(paymentmodels.PaymentStatusPending, payment.Status)
			s.Equal(i+1, payment.Period.Month)
			s.Equal(120.0, payment.Amount)
		}
	})

	s.Run("second run creates nothing", func() {
		created, err := s.service.GeneratePending(ctx, s.policyID)
		s.Require().NoError(err)
		s.Empty(created)
	})

	s.Run("registered periods are skipped", func() {
		fresh := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID:             fresh,
			Status:         policymodels.PolicyStatusActive,
			MonthlyPremium: 120,
			ValidFrom:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:        time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
		_, err := s.service.Register(ctx, RegisterRequest{
			PolicyID: fresh, Amount: 120, Month: 2, Year: 2026,
		})
		s.Require().NoError(err)

		created, err := s.service.GeneratePending(ctx, fresh)
		s.Require().NoError(err)
		s.Len(created, 2)
	})

	s.Run("unknown policy is not found", func() {
		_, err := s.service.GeneratePending(ctx, id.NewPolicyID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("policy without a validity start is rejected", func() {
		broken := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID:             broken,
			Status:         policymodels.PolicyStatusActive,
			MonthlyPremium: 120,
		})
		_, err := s.service.GeneratePending(ctx, broken)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *LedgerSuite) TestSplit() {
	breakdown, err := s.service.Split(context.Background(), s.policyID, 100)
	s.Require().NoError(err)
	s.Equal(0.0, breakdown.InstitutionShare)
	s.Equal(100.0, breakdown.EmployeeShare)
}
