package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mandate/internal/claims/models"
	"mandate/internal/claims/service"
	"mandate/internal/transport/http/shared"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the claim routes. Submission and withdrawal require a
// caller identity; resolution additionally requires the admin role, enforced
// by the router's middleware chain. Reads are public.
func (h *Handler) Register(public, authed, admin chi.Router) {
	public.Get("/claims/{claimID}", h.getClaim)
	public.Get("/positions/{positionID}/claims", h.listByPosition)
	authed.Post("/claims", h.submitClaim)
	authed.Post("/claims/{claimID}/withdraw", h.withdrawClaim)
	admin.Post("/claims/{claimID}/resolve", h.resolveClaim)
}

type submitClaimRequest struct {
	PositionID         string    `json:"position_id"`
	TermStart          time.Time `json:"term_start"`
	TermEnd            time.Time `json:"term_end"`
	VerificationMethod string    `json:"verification_method"`
	ProofURL           string    `json:"proof_url,omitempty"`
	ProofEmail         string    `json:"proof_email,omitempty"`
	ProofDocument      []byte    `json:"proof_document,omitempty"` // base64 in transit
}

func (h *Handler) submitClaim(w http.ResponseWriter, r *http.Request) {
	var req submitClaimRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	positionID, err := id.ParsePositionID(req.PositionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	method, err := models.ParseVerificationMethod(req.VerificationMethod)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	claim, err := h.service.SubmitClaim(r.Context(), service.SubmitClaimInput{
		PositionID:    positionID,
		TermStart:     req.TermStart,
		TermEnd:       req.TermEnd,
		Method:        method,
		Proof:         proofFromRequest(method, req),
		ProofDocument: req.ProofDocument,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, claim)
}

func proofFromRequest(method models.VerificationMethod, req submitClaimRequest) models.Proof {
	switch method {
	case models.MethodEmailVerification:
		return models.EmailProof(req.ProofEmail)
	case models.MethodOfficialLink:
		return models.LinkProof(req.ProofURL)
	case models.MethodDocumentUpload:
		if req.ProofURL != "" {
			return models.DocumentProof(req.ProofURL)
		}
		// Raw document bytes go through the blob store in the service.
		return models.Proof{}
	default:
		return models.Proof{}
	}
}

type resolveClaimRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}

func (h *Handler) resolveClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req resolveClaimRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	decision, err := models.ParseDecision(req.Decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if decision == models.DecisionRejected && req.Notes == "" {
		h.writeError(w, r, dErrors.New(dErrors.CodeValidation, "rejection requires notes"))
		return
	}

	claim, err := h.service.ResolveClaim(r.Context(), claimID, decision, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) withdrawClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	claim, err := h.service.WithdrawClaim(r.Context(), claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) getClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	claim, err := h.service.GetClaim(r.Context(), claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) listByPosition(w http.ResponseWriter, r *http.Request) {
	positionID, err := id.ParsePositionID(chi.URLParam(r, "positionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	claims, err := h.service.ListByPosition(r.Context(), positionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, claims)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r.Context(), err)
	shared.WriteError(w, err)
}

func (h *Handler) logError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "claims request failed",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
