package succession

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mandate/internal/transport/http/shared"
	id "mandate/pkg/domain"
	"mandate/pkg/requestcontext"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the succession history route. Public read.
func (h *Handler) Register(public chi.Router) {
	public.Get("/positions/{positionID}/holders", h.listHolders)
}

func (h *Handler) listHolders(w http.ResponseWriter, r *http.Request) {
	positionID, err := id.ParsePositionID(chi.URLParam(r, "positionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.service.ListHolders(r.Context(), positionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r.Context(), err)
	shared.WriteError(w, err)
}

func (h *Handler) logError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "succession request failed",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
