// Package render writes JSON responses and maps domain errors to HTTP
// statuses.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
)

type errorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var statusByKind = map[string]int{
	"validation":                   http.StatusBadRequest,
	"missing_location_context":     http.StatusBadRequest,
	"unauthorized":                 http.StatusUnauthorized,
	"not_found":                    http.StatusNotFound,
	"duplicate_key":                http.StatusConflict,
	"allocation_mismatch":          http.StatusUnprocessableEntity,
	"cumulative_sanction_exceeded": http.StatusUnprocessableEntity,
	"budget_order_violation":       http.StatusUnprocessableEntity,
	"immutable_field":              http.StatusUnprocessableEntity,
}

// Status returns the HTTP status for err.
func Status(err error) int {
	if status, ok := statusByKind[apperr.Kind(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as a JSON error body. Storage failures are logged and
// reported without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	resp := errorResponse{Error: apperr.Kind(err), Message: err.Error()}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Message = "internal error"
	}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, fieldError{Field: f.Field, Message: f.Message})
		}
	}

	JSON(w, status, resp)
}

// BadRequest reports a malformed request before it reaches a service.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

// Decode reads a JSON body, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}
