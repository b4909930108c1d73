package registry

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mandate/internal/transport/http/shared"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/requestcontext"
)

// Handler wires the position registry's read-only HTTP routes.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/positions", h.handleSearch)
	r.Get("/positions/{positionID}", h.handleGet)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := SearchFilter{
		Country:  query.Get("country"),
		FreeText: query.Get("q"),
	}
	if rawLevel := query.Get("level"); rawLevel != "" {
		level, err := ParseGovernanceLevel(rawLevel)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.Level = &level
	}

	results, err := h.service.Search(ctx, filter)
	if err != nil {
		h.logError(ctx, "position search failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"positions": results})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	positionID, err := id.ParsePositionID(chi.URLParam(r, "positionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	position, err := h.service.Get(ctx, positionID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logError(ctx, "position lookup failed", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, position)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
