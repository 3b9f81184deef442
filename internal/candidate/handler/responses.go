package handler

import (
	"encoding/json"
	"net/http"

	"pubcred/internal/candidate/models"
	dErrors "pubcred/pkg/domain-errors"
)

// candidateResponse is the wire shape returned by mutating endpoints. It
// carries the aggregate with global status resolved; the richer Summary
// projection (with period status) is served by the read endpoints.
type candidateResponse struct {
	Candidate    *models.Candidate           `json:"candidate"`
	GlobalStatus models.GlobalApprovalStatus `json:"global_status"`
}

func toCandidateResponse(c *models.Candidate) candidateResponse {
	return candidateResponse{Candidate: c, GlobalStatus: c.GlobalStatus()}
}

type errorResponse struct {
	Error string       `json:"error"`
	Code  dErrors.Code `json:"code"`
}

// writeError maps domain error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvalidCandidateState:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeUnauthorized:
		status = http.StatusForbidden
	case dErrors.CodeIllegalUpdate, dErrors.CodeIllegalState:
		status = http.StatusConflict
	case dErrors.CodeConflict:
		status = http.StatusConflict
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
