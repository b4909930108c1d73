package timeline

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mandate/internal/transport/http/shared"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/requestcontext"
)

type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator, logger *slog.Logger) *Handler {
	return &Handler{aggregator: aggregator, logger: logger}
}

// Register mounts the stream routes. A holder's public timeline is open; the
// personal stream needs the caller's identity.
func (h *Handler) Register(public, authed chi.Router) {
	public.Get("/claims/{claimID}/timeline", h.claimTimeline)
	authed.Get("/me/timeline", h.myTimeline)
}

func (h *Handler) claimTimeline(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.aggregator.Stream(r.Context(), Scope{ClaimID: &claimID}, queryFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) myTimeline(w http.ResponseWriter, r *http.Request) {
	actor := requestcontext.ActorID(r.Context())
	if actor.IsNil() {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	items, err := h.aggregator.Stream(r.Context(), Scope{ActorID: actor}, queryFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func queryFrom(r *http.Request) Query {
	q := Query{Category: r.URL.Query().Get("category")}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		q.Offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		q.Limit = v
	}
	return q
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r.Context(), err)
	shared.WriteError(w, err)
}

func (h *Handler) logError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "timeline request failed",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
