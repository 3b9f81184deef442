package period

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pubcred/internal/platform/middleware"
	dErrors "pubcred/pkg/domain-errors"
)

// Handler exposes the administrative period endpoints. Periods change a few
// times a year; this surface exists so operators can open and close reporting
// windows without touching the database.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a period Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the period routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(h.logger))

	router.Put("/", h.handleUpsert)
	router.Get("/{year}", h.handleGet)

	r.Mount("/periods", router)
}

type periodRequest struct {
	Year          int       `json:"year"`
	StartDate     time.Time `json:"start_date"`
	ReportingDate time.Time `json:"reporting_date"`
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var body periodRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	p := Period{Year: body.Year, StartDate: body.StartDate, ReportingDate: body.ReportingDate}
	if err := h.service.UpsertPeriod(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeInvalidInput, "year must be an integer"))
		return
	}

	p, err := h.service.GetPeriod(r.Context(), year)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
