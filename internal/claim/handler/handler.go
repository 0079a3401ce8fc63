// Package handler exposes the claim workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	claimmodels "amparo/internal/claim/models"
	claimservice "amparo/internal/claim/service"
	"amparo/internal/platform/metrics"
	"amparo/internal/platform/middleware"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
)

// maxDocumentBytes caps an evidence upload.
const maxDocumentBytes = 10 << 20

// Service defines the claim operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req claimservice.CreateRequest) (*claimmodels.Claim, error)
	Get(ctx context.Context, claimID id.ClaimID) (*claimmodels.Claim, error)
	Transition(ctx context.Context, claimID id.ClaimID, target claimmodels.ClaimStatus) (*claimmodels.Claim, error)
	AttachDocument(ctx context.Context, claimID id.ClaimID, docType, contentType string, body []byte) (*claimmodels.Document, error)
	ListDocuments(ctx context.Context, claimID id.ClaimID) ([]*claimmodels.Document, error)
	SetLiquidation(ctx context.Context, claimID id.ClaimID, amount float64, date time.Time) (*claimservice.Liquidation, error)
}

// Handler handles claim endpoints.
type Handler struct {
	logger    *slog.Logger
	claims    Service
	metrics   *metrics.Metrics
	validator middleware.Validator
}

// New creates a new claim Handler.
func New(claims Service, logger *slog.Logger, metrics *metrics.Metrics, validator middleware.Validator) *Handler {
	return &Handler{
		logger:    logger,
		claims:    claims,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the claim routes with the chi router. Routes are added
// in a group so the module middleware stack stays local to them; mounting a
// sub-router at "/" would collide with the other modules.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(h.metrics.Latency)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/claims", h.handleCreate)
		r.Get("/claims/{claimID}", h.handleGet)
		r.Post("/claims/{claimID}/transition", h.handleTransition)
		r.Post("/claims/{claimID}/documents", h.handleAttachDocument)
		r.Get("/claims/{claimID}/documents", h.handleListDocuments)
		r.Post("/claims/{claimID}/liquidation", h.handleSetLiquidation)
	})
}

type createRequest struct {
	PolicyID            string `json:"policy_id"`
	DeceasedID          string `json:"deceased_id"`
	IncidentDate        string `json:"incident_date"`
	Cause               string `json:"cause"`
	CommercialException bool   `json:"commercial_exception"`
}

type claimResponse struct {
	ID             string  `json:"id"`
	PolicyID       string  `json:"policy_id"`
	DeceasedID     string  `json:"deceased_id"`
	IncidentDate   string  `json:"incident_date"`
	ReportedAt     string  `json:"reported_at"`
	Status         string  `json:"status"`
	Cause          string  `json:"cause,omitempty"`
	Extemporaneous bool    `json:"extemporaneous"`
	Liquidation    float64 `json:"liquidation_amount,omitempty"`
}

func toClaimResponse(c *claimmodels.Claim) claimResponse {
	resp := claimResponse{
		ID:             c.ID.String(),
		PolicyID:       c.PolicyID.String(),
		DeceasedID:     c.DeceasedID,
		IncidentDate:   c.IncidentDate.Format("2006-01-02"),
		ReportedAt:     c.ReportedAt.Format(time.RFC3339),
		Status:         string(c.Status),
		Cause:          c.Cause,
		Extemporaneous: c.Extemporaneous,
	}
	if c.LiquidationAmount != nil {
		resp.Liquidation = *c.LiquidationAmount
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	policyID, err := id.ParsePolicyID(req.PolicyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	incidentDate, err := time.Parse("2006-01-02", req.IncidentDate)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "incident_date must be YYYY-MM-DD"))
		return
	}

	claim, err := h.claims.Create(ctx, claimservice.CreateRequest{
		PolicyID:            policyID,
		DeceasedID:          req.DeceasedID,
		IncidentDate:        incidentDate,
		Cause:               req.Cause,
		CommercialException: req.CommercialException,
	})
	if err != nil {
		h.logError(ctx, "claim intake failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toClaimResponse(claim))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	claim, err := h.claims.Get(r.Context(), claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimResponse(claim))
}

type transitionRequest struct {
	Target string `json:"target"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	target, err := claimmodels.ParseClaimStatus(req.Target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := h.claims.Transition(ctx, claimID, target)
	if err != nil {
		h.logError(ctx, "claim transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimResponse(claim))
}

type documentResponse struct {
	ID               string `json:"id"`
	ClaimID          string `json:"claim_id"`
	Type             string `json:"type"`
	Digest           string `json:"digest"`
	URL              string `json:"url"`
	ValidationStatus string `json:"validation_status"`
}

func toDocumentResponse(d *claimmodels.Document) documentResponse {
	return documentResponse{
		ID:               d.ID.String(),
		ClaimID:          d.ClaimID.String(),
		Type:             d.Type,
		Digest:           d.Digest,
		URL:              d.URL,
		ValidationStatus: string(d.ValidationStatus),
	}
}

// handleAttachDocument takes the raw document as the request body. The
// document type comes from the "type" query parameter; the Content-Type
// header must match the single accepted format.
func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "could not read request body"))
		return
	}
	if len(body) > maxDocumentBytes {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "document exceeds the size limit"))
		return
	}

	doc, err := h.claims.AttachDocument(ctx, claimID,
		r.URL.Query().Get("type"), r.Header.Get("Content-Type"), body)
	if err != nil {
		h.logError(ctx, "document intake failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.claims.ListDocuments(r.Context(), claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, toDocumentResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type liquidationRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

type liquidationResponse struct {
	ClaimID          string  `json:"claim_id"`
	Amount           float64 `json:"amount"`
	Date             string  `json:"date"`
	InstitutionShare float64 `json:"institution_share"`
	EmployeeShare    float64 `json:"employee_share"`
}

func (h *Handler) handleSetLiquidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req liquidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
	}

	liq, err := h.claims.SetLiquidation(ctx, claimID, req.Amount, date)
	if err != nil {
		h.logError(ctx, "liquidation recording failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, liquidationResponse{
		ClaimID:          liq.ClaimID.String(),
		Amount:           liq.Amount,
		Date:             liq.Date.Format("2006-01-02"),
		InstitutionShare: liq.InstitutionShare,
		EmployeeShare:    liq.EmployeeShare,
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err)
}
