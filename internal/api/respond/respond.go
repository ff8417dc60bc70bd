// Package respond writes JSON responses and maps domain errors onto HTTP
// status codes in one place, so handlers stay thin.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/recovera/timeline-service/internal/model"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error        string   `json:"error"`
	Code         int      `json:"code"`
	Message      string   `json:"message,omitempty"`
	ReferencedBy []string `json:"referencedBy,omitempty"`
}

// WriteJSON writes data with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// WriteError writes a standardized error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteDomainError maps a service error onto its status code: validation 400,
// not found 404, conflict 409 (reference conflicts carry the holding action
// ids), storage 502 and everything else 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var refErr *model.ReferenceError
	switch {
	case errors.As(err, &refErr):
		WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:        http.StatusText(http.StatusConflict),
			Code:         http.StatusConflict,
			Message:      refErr.Error(),
			ReferencedBy: refErr.ReferencedBy,
		})
	case errors.Is(err, model.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrStorage):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
