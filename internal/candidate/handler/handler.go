package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pubcred/internal/candidate/models"
	"pubcred/internal/platform/middleware"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/requestcontext"
)

// Service defines the candidate operations the HTTP layer exposes.
type Service interface {
	Upsert(ctx context.Context, req models.UpsertRequest) (*models.Candidate, error)
	MarkNonCandidate(ctx context.Context, publicationID id.PublicationID) (*models.Candidate, error)
	GetSummary(ctx context.Context, candidateID id.CandidateID) (*models.Summary, error)
	GetSummaryByPublication(ctx context.Context, publicationID id.PublicationID) (*models.Summary, error)
	UpdateApprovalStatus(ctx context.Context, candidateID id.CandidateID, institutionID id.InstitutionID, status models.ApprovalStatus, username, reason string) (*models.Candidate, error)
	UpdateApprovalAssignee(ctx context.Context, candidateID id.CandidateID, institutionID id.InstitutionID, username string) (*models.Candidate, error)
	CreateNote(ctx context.Context, candidateID id.CandidateID, text, username string, institutionID id.InstitutionID) (*models.Candidate, error)
	DeleteNote(ctx context.Context, candidateID id.CandidateID, noteID id.NoteID, username string) (*models.Candidate, error)
}

// Handler handles candidate endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a candidate Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the candidate routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Username)
	router.Use(middleware.Logger(h.logger))

	router.Post("/candidates", h.handleUpsert)
	router.Post("/candidates/non-candidate", h.handleNonCandidate)
	router.Get("/candidates/{candidateID}", h.handleGetSummary)
	router.Get("/candidates/by-publication/{publicationID}", h.handleGetByPublication)
	router.Put("/candidates/{candidateID}/approvals/{institutionID}/status", h.handleUpdateStatus)
	router.Put("/candidates/{candidateID}/approvals/{institutionID}/assignee", h.handleUpdateAssignee)
	router.Post("/candidates/{candidateID}/notes", h.handleCreateNote)
	router.Delete("/candidates/{candidateID}/notes/{noteID}", h.handleDeleteNote)

	r.Mount("/", router)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var body upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	candidate, err := h.service.Upsert(r.Context(), body.toModel())
	if err != nil {
		h.logFailure(r, "upsert failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

func (h *Handler) handleNonCandidate(w http.ResponseWriter, r *http.Request) {
	var body nonCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	candidate, err := h.service.MarkNonCandidate(r.Context(), id.PublicationID(body.PublicationID))
	if err != nil {
		h.logFailure(r, "non-candidate update failed", err)
		writeError(w, err)
		return
	}
	if candidate == nil {
		// Unknown reference: tolerated no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

func (h *Handler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), candidateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleGetByPublication(w http.ResponseWriter, r *http.Request) {
	publicationID := id.PublicationID(chi.URLParam(r, "publicationID"))

	summary, err := h.service.GetSummaryByPublication(r.Context(), publicationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, err)
		return
	}
	institutionID := id.InstitutionID(chi.URLParam(r, "institutionID"))

	var body updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	candidate, err := h.service.UpdateApprovalStatus(
		r.Context(),
		candidateID,
		institutionID,
		models.ApprovalStatus(body.Status),
		requestcontext.Username(r.Context()),
		body.Reason,
	)
	if err != nil {
		h.logFailure(r, "approval status update failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

func (h *Handler) handleUpdateAssignee(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, err)
		return
	}
	institutionID := id.InstitutionID(chi.URLParam(r, "institutionID"))

	var body updateAssigneeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	candidate, err := h.service.UpdateApprovalAssignee(r.Context(), candidateID, institutionID, body.Assignee)
	if err != nil {
		h.logFailure(r, "assignee update failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var body createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	candidate, err := h.service.CreateNote(
		r.Context(),
		candidateID,
		body.Text,
		requestcontext.Username(r.Context()),
		id.InstitutionID(body.InstitutionID),
	)
	if err != nil {
		h.logFailure(r, "note creation failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCandidateResponse(candidate))
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, err)
		return
	}
	noteID, err := id.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, err)
		return
	}

	candidate, err := h.service.DeleteNote(r.Context(), candidateID, noteID, requestcontext.Username(r.Context()))
	if err != nil {
		h.logFailure(r, "note deletion failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error(),
	)
}
