package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"amparo/internal/audit"
	"amparo/internal/blob"
	claimmodels "amparo/internal/claim/models"
	claimstore "amparo/internal/claim/store"
	"amparo/internal/eligibility"
	"amparo/internal/intake/intent"
	paymentmodels "amparo/internal/payment/models"
	paymentstore "amparo/internal/payment/store"
	"amparo/internal/platform/logger"
	policymodels "amparo/internal/policy/models"
	policystore "amparo/internal/policy/store"
	"amparo/internal/rules"
	"amparo/internal/vigency"
	vigencymodels "amparo/internal/vigency/models"
	vigencystore "amparo/internal/vigency/store"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/requestcontext"
)

type WorkflowSuite struct {
	suite.Suite
	policies  *policystore.InMemoryStore
	payments  *paymentstore.InMemoryStore
	claims    *claimstore.InMemoryClaimStore
	documents *claimstore.InMemoryDocumentStore
	periods   *vigencystore.InMemoryStore
	audits    *audit.InMemoryStore
	blobs     *blob.InMemoryStore
	intents   *intent.InMemoryStore
	service   *Service
	policyID  id.PolicyID
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.policies = policystore.NewMemory()
	s.payments = paymentstore.NewMemory()
	s.claims = claimstore.NewClaimMemory()
	s.documents = claimstore.NewDocumentMemory()
	s.periods = vigencystore.NewMemory()
	s.audits = audit.NewMemory()
	s.blobs = blob.NewMemory()
	s.intents = intent.NewMemory()

	s.service = New(Config{
		Claims:      s.claims,
		Documents:   s.documents,
		Policies:    s.policies,
		Vigency:     vigency.NewGuard(s.periods),
		Eligibility: eligibility.NewGuard(s.policies, s.payments),
		Rules:       rules.NewMemory(),
		Blobs:       s.blobs,
		Intents:     s.intents,
		Auditor:     audit.NewPublisher(s.audits, logger.New()),
		IntentTTL:   15 * time.Minute,
	})

	s.policyID = id.NewPolicyID()
	s.policies.Seed(&policymodels.Policy{
		ID:             s.policyID,
		Status:         policymodels.PolicyStatusActive,
		MonthlyPremium: 120,
		ValidFrom:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:        time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	s.periods.Seed(&vigencymodels.Period{
		ID:        id.NewPeriodID(),
		Year:      2026,
		Status:    vigencymodels.PeriodStatusOpen,
		StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
}

// ctxAt pins the request clock inside the seeded validity window.
func (s *WorkflowSuite) ctxAt(month time.Month, day int) context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2026, month, day, 10, 0, 0, 0, time.UTC))
}

func (s *WorkflowSuite) create(ctx context.Context) (*claimmodels.Claim, error) {
	return s.service.Create(ctx, CreateRequest{
		PolicyID:     s.policyID,
		DeceasedID:   "CUR-19401102",
		IncidentDate: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		Cause:        "natural",
	})
}

func (s *WorkflowSuite) attachPDF(ctx context.Context, claimID id.ClaimID) (*claimmodels.Document, error) {
	return s.service.AttachDocument(ctx, claimID, "death_certificate", "application/pdf", []byte("%PDF-1.4 test"))
}

func (s *WorkflowSuite) TestCreate() {
	ctx := s.ctxAt(time.March, 3)

	s.Run("admits a claim inside the validity window", func() {
		claim, err := s.create(ctx)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusReported, claim.Status)
		s.False(claim.Extemporaneous)

		events, err := s.audits.ListBySubject(context.Background(), claim.ID.String())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionClaimCreated, events[0].Action)
	})

	s.Run("duplicate incident conflicts", func() {
		_, err := s.create(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("future incident date is rejected", func() {
		_, err := s.service.Create(ctx, CreateRequest{
			PolicyID:     s.policyID,
			DeceasedID:   "CUR-19500101",
			IncidentDate: time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("after the cutoff day the claim is extemporaneous", func() {
		late := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID: late, Status: policymodels.PolicyStatusActive, MonthlyPremium: 120,
			ValidFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
		claim, err := s.service.Create(s.ctxAt(time.March, 20), CreateRequest{
			PolicyID:     late,
			DeceasedID:   "CUR-19380215",
			IncidentDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
		s.Require().NoError(err)
		s.True(claim.Extemporaneous)
	})
}

func (s *WorkflowSuite) TestCreateGuards() {
	s.Run("closed vigency blocks intake", func() {
		_, err := s.service.Create(s.ctxAt(time.March, 3), CreateRequest{
			PolicyID:     s.policyID,
			DeceasedID:   "CUR-19401102",
			IncidentDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		})
		// Window is open in 2026; use a clock outside it instead.
		s.Require().NoError(err)

		_, err = s.service.Create(
			requestcontext.WithTime(context.Background(), time.Date(2027, time.March, 3, 10, 0, 0, 0, time.UTC)),
			CreateRequest{
				PolicyID:     s.policyID,
				DeceasedID:   "CUR-19520707",
				IncidentDate: time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC),
			})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})

	s.Run("commercial exception bypasses vigency and leaves a trace", func() {
		claim, err := s.service.Create(
			requestcontext.WithTime(context.Background(), time.Date(2027, time.March, 3, 10, 0, 0, 0, time.UTC)),
			CreateRequest{
				PolicyID:            s.policyID,
				DeceasedID:          "CUR-19330412",
				IncidentDate:        time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC),
				CommercialException: true,
			})
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusReported, claim.Status)

		events, err := s.audits.ListBySubject(context.Background(), s.policyID.String())
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(audit.ActionVigencyBypassed, events[len(events)-1].Action)
	})

	s.Run("arrears block intake even with the exception", func() {
		overdue := &paymentmodels.Payment{
			ID:       id.NewPaymentID(),
			PolicyID: s.policyID,
			Period:   paymentmodels.Period{Month: 1, Year: 2026},
			Amount:   120,
			Status:   paymentmodels.PaymentStatusPending,
		}
		_, err := s.payments.InsertPending(context.Background(), []*paymentmodels.Payment{overdue})
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctxAt(time.March, 3), CreateRequest{
			PolicyID:            s.policyID,
			DeceasedID:          "CUR-19471224",
			IncidentDate:        time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			CommercialException: true,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})

	s.Run("unknown policy is blocked", func() {
		_, err := s.service.Create(s.ctxAt(time.March, 3), CreateRequest{
			PolicyID:     id.NewPolicyID(),
			DeceasedID:   "CUR-19401102",
			IncidentDate: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeGuardBlocked))
	})
}

func (s *WorkflowSuite) TestAttachDocument() {
	ctx := s.ctxAt(time.March, 3)
	claim, err := s.create(ctx)
	s.Require().NoError(err)

	s.Run("stores the blob and the metadata row", func() {
		doc, err := s.attachPDF(ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(claimmodels.ValidationStatusPending, doc.ValidationStatus)
		s.NotEmpty(doc.Digest)
		s.NotEmpty(doc.URL)

		count, err := s.documents.CountByClaim(ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("clears the upload intent", func() {
		records, err := s.intents.Scan(ctx)
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("identical re-upload is accepted", func() {
		_, err := s.attachPDF(ctx, claim.ID)
		s.Require().NoError(err)
		count, err := s.documents.CountByClaim(ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("rejects non-pdf content", func() {
		_, err := s.service.AttachDocument(ctx, claim.ID, "id_card", "image/png", []byte("png"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown claim is not found", func() {
		_, err := s.attachPDF(ctx, id.NewClaimID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("failed blob write leaves the intent pending and no metadata", func() {
		s.blobs.FailPut = true
		defer func() { s.blobs.FailPut = false }()
		_, err := s.service.AttachDocument(ctx, claim.ID, "medical_report", "application/pdf", []byte("other body"))
		s.Require().Error(err)

		records, err := s.intents.Scan(ctx)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(claim.ID, records[0].ClaimID)

		count, err := s.documents.CountByClaim(ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(2, count)
	})
}

func (s *WorkflowSuite) TestTransition() {
	ctx := s.ctxAt(time.March, 3)

	s.Run("reported to in_process requires a document", func() {
		claim, err := s.create(ctx)
		s.Require().NoError(err)

		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		_, err = s.attachPDF(ctx, claim.ID)
		s.Require().NoError(err)

		moved, err := s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusInProcess, moved.Status)

		moved, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusPaid)
		s.Require().NoError(err)
		s.Equal(claimmodels.ClaimStatusPaid, moved.Status)
	})

	s.Run("skipping a state is invalid", func() {
		other := id.NewPolicyID()
		s.policies.Seed(&policymodels.Policy{
			ID: other, Status: policymodels.PolicyStatusActive, MonthlyPremium: 120,
			ValidFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
		claim, err := s.service.Create(ctx, CreateRequest{
			PolicyID:     other,
			DeceasedID:   "CUR-19410309",
			IncidentDate: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		})
		s.Require().NoError(err)

		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusPaid)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("paid is terminal", func() {
		claim, err := s.create(ctx)
		s.Require().NoError(err)
		_, err = s.attachPDF(ctx, claim.ID)
		s.Require().NoError(err)
		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
		s.Require().NoError(err)
		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusPaid)
		s.Require().NoError(err)

		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *WorkflowSuite) TestAttachAfterPaid() {
	ctx := s.ctxAt(time.March, 3)
	claim, err := s.create(ctx)
	s.Require().NoError(err)
	_, err = s.attachPDF(ctx, claim.ID)
	s.Require().NoError(err)
	_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
	s.Require().NoError(err)
	_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusPaid)
	s.Require().NoError(err)

	_, err = s.attachPDF(ctx, claim.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *WorkflowSuite) TestSetLiquidation() {
	ctx := s.ctxAt(time.March, 3)
	claim, err := s.create(ctx)
	s.Require().NoError(err)

	s.Run("reported claims cannot be liquidated", func() {
		_, err := s.service.SetLiquidation(ctx, claim.ID, 5000, time.Time{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("records amount, date and the copay division", func() {
		_, err := s.attachPDF(ctx, claim.ID)
		s.Require().NoError(err)
		_, err = s.service.Transition(ctx, claim.ID, claimmodels.ClaimStatusInProcess)
		s.Require().NoError(err)

		liq, err := s.service.SetLiquidation(ctx, claim.ID, 5000, time.Time{})
		s.Require().NoError(err)
		s.Equal(5000.0, liq.Amount)
		s.Equal(0.0, liq.InstitutionShare)
		s.Equal(5000.0, liq.EmployeeShare)

		stored, err := s.service.Get(ctx, claim.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.LiquidationAmount)
		s.Equal(5000.0, *stored.LiquidationAmount)
		s.Require().NotNil(stored.LiquidationDate)
	})

	s.Run("non-positive amount is rejected", func() {
		_, err := s.service.SetLiquidation(ctx, claim.ID, 0, time.Time{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
