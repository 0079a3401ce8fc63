// Package eligibility decides whether a policy is in good standing for claim
// intake. Fails closed: unknown policy, non-active status, or any arrears
// record blocks 100% of intake; there is no partial pass.
package eligibility

import (
	"context"
	"errors"
	"fmt"

	paymentmodels "amparo/internal/payment/models"
	paymentstore "amparo/internal/payment/store"
	policystore "amparo/internal/policy/store"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Result reports the standing decision with its reason and, when arrears
// caused the block, how many overdue rows were found.
type Result struct {
	Eligible     bool
	Reason       string
	ArrearsCount int
}

// Guard evaluates account standing against the policy and payment stores.
type Guard struct {
	policies policystore.Store
	payments paymentstore.Store
}

// NewGuard constructs an access-control guard.
func NewGuard(policies policystore.Store, payments paymentstore.Store) *Guard {
	return &Guard{policies: policies, payments: payments}
}

// Check evaluates eligibility for claim intake. Storage failures are returned
// as errors; a firm "no" comes back as an ineligible Result, not an error, so
// callers can report the reason.
func (g *Guard) Check(ctx context.Context, policyID id.PolicyID) (Result, error) {
	policy, err := g.policies.FindByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Result{Eligible: false, Reason: "policy not found"}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not load policy")
	}

	if !policy.IsActive() {
		return Result{
			Eligible: false,
			Reason:   fmt.Sprintf("policy is %s", policy.Status),
		}, nil
	}

	current := paymentmodels.PeriodOf(requestcontext.Now(ctx))
	overdue, err := g.payments.FindOverdueByPolicy(ctx, policyID, current)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not check arrears")
	}
	if len(overdue) > 0 {
		return Result{
			Eligible:     false,
			Reason:       fmt.Sprintf("policy has %d overdue payment(s)", len(overdue)),
			ArrearsCount: len(overdue),
		}, nil
	}

	return Result{Eligible: true}, nil
}

// Err converts an ineligible result into the guard_blocked domain error the
// claim workflow surfaces to callers.
func (r Result) Err() error {
	if r.Eligible {
		return nil
	}
	err := dErrors.New(dErrors.CodeGuardBlocked, r.Reason)
	if r.ArrearsCount > 0 {
		err = err.WithField("arrears_count", r.ArrearsCount)
	}
	return err
}
