// Package handler exposes the payment ledger over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	paymentmodels "amparo/internal/payment/models"
	paymentservice "amparo/internal/payment/service"
	"amparo/internal/payment/split"
	"amparo/internal/platform/metrics"
	"amparo/internal/platform/middleware"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
)

// Service defines the ledger operations the handler depends on.
type Service interface {
	Register(ctx context.Context, req paymentservice.RegisterRequest) (*paymentmodels.Payment, error)
	GeneratePending(ctx context.Context, policyID id.PolicyID) ([]*paymentmodels.Payment, error)
	Split(ctx context.Context, policyID id.PolicyID, amount float64) (split.Breakdown, error)
}

// Handler handles payment endpoints.
type Handler struct {
	logger    *slog.Logger
	payments  Service
	metrics   *metrics.Metrics
	validator middleware.Validator
}

// New creates a new payment Handler.
func New(payments Service, logger *slog.Logger, metrics *metrics.Metrics, validator middleware.Validator) *Handler {
	return &Handler{
		logger:    logger,
		payments:  payments,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the payment routes with the chi router. Routes are added
// in a group so the module middleware stack stays local to them; mounting a
// sub-router at "/" would collide with the other modules.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(h.metrics.Latency)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/payments", h.handleRegister)
		r.Post("/policies/{policyID}/payments/pending", h.handleGeneratePending)
		r.Get("/payments/split", h.handleSplit)
	})
}

type registerRequest struct {
	PolicyID string  `json:"policy_id"`
	Amount   float64 `json:"amount"`
	Month    int     `json:"month"`
	Year     int     `json:"year"`
}

type paymentResponse struct {
	ID               string  `json:"id"`
	PolicyID         string  `json:"policy_id"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	Amount           float64 `json:"amount"`
	EmployeeShare    float64 `json:"employee_share"`
	InstitutionShare float64 `json:"institution_share"`
	Extemporaneous   bool    `json:"extemporaneous"`
	Status           string  `json:"status"`
	PaidAt           string  `json:"paid_at,omitempty"`
}

func toPaymentResponse(p *paymentmodels.Payment) paymentResponse {
	resp := paymentResponse{
		ID:               p.ID.String(),
		PolicyID:         p.PolicyID.String(),
		Month:            p.Period.Month,
		Year:             p.Period.Year,
		Amount:           p.Amount,
		EmployeeShare:    p.EmployeeShare,
		InstitutionShare: p.InstitutionShare,
		Extemporaneous:   p.Extemporaneous,
		Status:           string(p.Status),
	}
	if p.PaidAt != nil {
		resp.PaidAt = p.PaidAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	policyID, err := id.ParsePolicyID(req.PolicyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payment, err := h.payments.Register(ctx, paymentservice.RegisterRequest{
		PolicyID: policyID,
		Amount:   req.Amount,
		Month:    req.Month,
		Year:     req.Year,
	})
	if err != nil {
		h.logError(ctx, "payment registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (h *Handler) handleGeneratePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.payments.GeneratePending(ctx, policyID)
	if err != nil {
		h.logError(ctx, "pending generation failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := make([]paymentResponse, 0, len(created))
	for _, p := range created {
		resp = append(resp, toPaymentResponse(p))
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

type splitResponse struct {
	Amount           float64 `json:"amount"`
	InstitutionShare float64 `json:"institution_share"`
	EmployeeShare    float64 `json:"employee_share"`
}

func (h *Handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	policyID, err := id.ParsePolicyID(r.URL.Query().Get("policy_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "amount must be a number"))
		return
	}

	breakdown, err := h.payments.Split(r.Context(), policyID, amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, splitResponse{
		Amount:           amount,
		InstitutionShare: breakdown.InstitutionShare,
		EmployeeShare:    breakdown.EmployeeShare,
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err)
}
