package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vagaroute/backend/internal/domain"
)

// errorDetail is the machine-readable part of an error response.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the JSON envelope every error is wrapped in.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures are logged,
// not surfaced — the status line has already been written by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error onto the HTTP error envelope.
// Sentinel errors become their canonical status; anything else is a 500 with
// a generic body — internal details are logged, never leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity,
			errorResponse{errorDetail{Code: "validation_error", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound,
			errorResponse{errorDetail{Code: "not_found", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized,
			errorResponse{errorDetail{Code: "unauthorized", Message: "invalid email or password"}})
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict,
			errorResponse{errorDetail{Code: "email_taken", Message: "email already registered"}})
	case errors.Is(err, domain.ErrUpstream):
		slog.ErrorContext(r.Context(), "upstream error", "error", err)
		writeJSON(w, http.StatusBadGateway,
			errorResponse{errorDetail{Code: "upstream_error", Message: "an external service is unavailable"}})
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{errorDetail{Code: "internal_error", Message: "something went wrong"}})
	}
}

// decodeJSON decodes the request body into v, writing the error response on
// failure. A body cut off by the size cap maps to 413; any other decode
// failure is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge,
			errorResponse{errorDetail{Code: "payload_too_large", Message: "request body exceeds the size limit"}})
		return false
	}
	badRequest(w, "request body is required")
	return false
}

// badRequest reports a request rejected before reaching the service layer
// (missing body, malformed JSON, bad path parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity,
		errorResponse{errorDetail{Code: "validation_error", Message: message}})
}

// notFoundMessage overrides the unwrapped chain with a caller-supplied
// message, e.g. "trip not found". The handler is the layer that knows what
// was being looked up.
func notFoundMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound,
		errorResponse{errorDetail{Code: "not_found", Message: message}})
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel
// error, e.g.
//
//	"service.TripService.Create: validation error: title is required"
//
// becomes "title is required". When no sentinel text is present the full
// message is returned as-is.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []string{
		domain.ErrValidation.Error() + ": ",
		domain.ErrNotFound.Error() + ": ",
	} {
		if i := strings.LastIndex(msg, sentinel); i >= 0 {
			return msg[i+len(sentinel):]
		}
	}
	// Strip "pkg.Type.Method: " prefixes from plain sentinel chains.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
