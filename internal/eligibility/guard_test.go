package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	paymentmodels "amparo/internal/payment/models"
	paymentstore "amparo/internal/payment/store"
	policymodels "amparo/internal/policy/models"
	policystore "amparo/internal/policy/store"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/requestcontext"
)

type GuardSuite struct {
	suite.Suite
	policies *policystore.InMemoryStore
	payments *paymentstore.InMemoryStore
	guard    *Guard
	ctx      context.Context
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.policies = policystore.NewMemory()
	s.payments = paymentstore.NewMemory()
	s.guard = NewGuard(s.policies, s.payments)
	s.ctx = requestcontext.WithTime(context.Background(),
		time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC))
}

func (s *GuardSuite) seedPolicy(status policymodels.PolicyStatus) id.PolicyID {
	policyID := id.NewPolicyID()
	s.policies.Seed(&policymodels.Policy{
		ID:             policyID,
		Status:         status,
		MonthlyPremium: 120,
	})
	return policyID
}

func (s *GuardSuite) TestUnknownPolicyIsIneligible() {
	result, err := s.guard.Check(s.ctx, id.NewPolicyID())
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Equal("policy not found", result.Reason)
}

func (s *GuardSuite) TestNonActiveStatusIsIneligible() {
	policyID := s.seedPolicy(policymodels.PolicyStatusCancelled)

	result, err := s.guard.Check(s.ctx, policyID)
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Contains(result.Reason, "cancelled")
}

func (s *GuardSuite) TestArrearsBlockWithCount() {
	policyID := s.seedPolicy(policymodels.PolicyStatusActive)
	for _, month := range []int{1, 2} {
		s.Require().NoError(s.payments.Insert(s.ctx, &paymentmodels.Payment{
			ID:       id.NewPaymentID(),
			PolicyID: policyID,
			Period:   paymentmodels.Period{Month: month, Year: 2026},
			Status:   paymentmodels.PaymentStatusPending,
		}))
	}

	result, err := s.guard.Check(s.ctx, policyID)
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Equal(2, result.ArrearsCount)
}

func (s *GuardSuite) TestActivePolicyWithNoArrearsIsEligible() {
	policyID := s.seedPolicy(policymodels.PolicyStatusActive)

	result, err := s.guard.Check(s.ctx, policyID)
	s.Require().NoError(err)
	s.True(result.Eligible)
	s.Empty(result.Reason)
}

func TestResultErr(t *testing.T) {
	t.Run("eligible yields nil", func(t *testing.T) {
		assert.NoError(t, Result{Eligible: true}.Err())
	})

	t.Run("arrears yield guard_blocked with count", func(t *testing.T) {
		err := Result{Eligible: false, Reason: "policy has 3 overdue payment(s)", ArrearsCount: 3}.Err()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeGuardBlocked))
		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 3, de.Fields["arrears_count"])
	})
}
