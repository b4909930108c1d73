package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mandate/internal/ledger/models"
	"mandate/internal/ledger/service"
	"mandate/internal/transport/http/shared"
	id "mandate/pkg/domain"
	"mandate/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the ledger routes. Reads are public; every write requires
// a caller identity, with holder-only rules enforced in the service.
func (h *Handler) Register(public, authed chi.Router) {
	public.Get("/claims/{claimID}/promises", h.listPromises)
	public.Get("/claims/{claimID}/projects", h.listProjects)
	public.Get("/claims/{claimID}/questions", h.listQuestions)
	public.Get("/projects/{projectID}/updates", h.listProjectUpdates)

	authed.Post("/claims/{claimID}/promises", h.addPromise)
	authed.Patch("/promises/{promiseID}", h.updatePromise)
	authed.Post("/projects", h.addProject)
	authed.Post("/projects/{projectID}/link", h.linkProject)
	authed.Post("/projects/{projectID}/updates", h.recordProjectUpdate)
	authed.Post("/claims/{claimID}/questions", h.askQuestion)
	authed.Post("/questions/{questionID}/answer", h.answerQuestion)
	authed.Post("/questions/{questionID}/upvote", h.upvoteQuestion)
	authed.Post("/questions/{questionID}/pin", h.pinQuestion)
}

type addPromiseRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (h *Handler) addPromise(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req addPromiseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	promise, err := h.service.AddPromise(r.Context(), service.AddPromiseInput{
		ClaimID:     claimID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, promise)
}

type updatePromiseRequest struct {
	Status          string `json:"status"`
	ProgressPercent int    `json:"progress_percent"`
	Note            string `json:"note,omitempty"`
}

func (h *Handler) updatePromise(w http.ResponseWriter, r *http.Request) {
	promiseID, err := id.ParsePromiseID(chi.URLParam(r, "promiseID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updatePromiseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := models.ParsePromiseStatus(req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	promise, err := h.service.UpdatePromise(r.Context(), promiseID, status, req.ProgressPercent, req.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, promise)
}

func (h *Handler) listPromises(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	promises, err := h.service.ListPromises(r.Context(), claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, promises)
}

type addProjectRequest struct {
	ClaimID     string `json:"claim_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	County      string `json:"county,omitempty"`
}

func (h *Handler) addProject(w http.ResponseWriter, r *http.Request) {
	var req addProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in := service.AddProjectInput{
		Title:       req.Title,
		Description: req.Description,
		County:      req.County,
	}
	if req.ClaimID != "" {
		claimID, err := id.ParseClaimID(req.ClaimID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		in.ClaimID = &claimID
	}

	project, err := h.service.AddProject(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, project)
}

type linkProjectRequest struct {
	ClaimID string `json:"claim_id"`
}

func (h *Handler) linkProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req linkProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	claimID, err := id.ParseClaimID(req.ClaimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	project, err := h.service.LinkExistingProject(r.Context(), projectID, claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

type projectUpdateRequest struct {
	Type            string `json:"update_type"`
	Notes           string `json:"notes,omitempty"`
	ProgressPercent *int   `json:"progress_percent,omitempty"`
}

func (h *Handler) recordProjectUpdate(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req projectUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updateType, err := models.ParseUpdateType(req.Type)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	update, err := h.service.RecordProjectUpdate(r.Context(), service.RecordProjectUpdateInput{
		ProjectID:       projectID,
		Type:            updateType,
		Notes:           req.Notes,
		ProgressPercent: req.ProgressPercent,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, update)
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	projects, err := h.service.ListProjects(r.Context(), claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, projects)
}

func (h *Handler) listProjectUpdates(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updates, err := h.service.ListProjectUpdates(r.Context(), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updates)
}

type askQuestionRequest struct {
	Body string `json:"body"`
}

func (h *Handler) askQuestion(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req askQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	question, err := h.service.AskQuestion(r.Context(), claimID, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, question)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	questions, err := h.service.ListQuestions(r.Context(), claimID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, questions)
}

type answerQuestionRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) answerQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := id.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req answerQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	question, err := h.service.AnswerQuestion(r.Context(), questionID, req.Answer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, question)
}

func (h *Handler) upvoteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := id.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	upvotes, err := h.service.UpvoteQuestion(r.Context(), questionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"upvotes": upvotes})
}

type pinQuestionRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *Handler) pinQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := id.ParseQuestionID(chi.URLParam(r, "questionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req pinQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	question, err := h.service.PinQuestion(r.Context(), questionID, req.Pinned)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, question)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r.Context(), err)
	shared.WriteError(w, err)
}

func (h *Handler) logError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "ledger request failed",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
