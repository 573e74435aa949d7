package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"runnerly-backend/internal/domain"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Allowed []string `json:"allowed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the workflow error taxonomy to HTTP statuses. Invalid
// transitions include the currently allowed target set for caller
// feedback.
func writeError(w http.ResponseWriter, err error) {
	var invalid *domain.InvalidTransitionError
	if errors.As(err, &invalid) {
		allowed := make([]string, len(invalid.Allowed))
		for i, s := range invalid.Allowed {
			allowed[i] = string(s)
		}
		writeJSON(w, http.StatusConflict, errorResponse{Error: invalid.Error(), Allowed: allowed})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateCompensation):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNegotiationClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCancellationWindow):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
