package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/frank/internal/expert"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Error codes carried in the envelope's "code" field.
const (
	codeInvalidRequest = "invalid_request"
	codeUnauthorized   = "unauthorized"
	codeNotFound       = "not_found"
	codeValidation     = "validation_failed"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal_error"
)

// Envelope is the response shape of every JSON endpoint except /health.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func httpError(w http.ResponseWriter, status int, code, format string, args ...any) {
	writeJSON(w, status, Envelope{Error: fmt.Sprintf(format, args...), Code: code})
}

// validationError writes a 422 with the per-field messages when err is an
// expert.FieldErrors, and reports whether it did.
func validationError(w http.ResponseWriter, err error) bool {
	var fe expert.FieldErrors
	if !errors.As(err, &fe) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, Envelope{
		Error:  "validation failed",
		Code:   codeValidation,
		Fields: fe,
	})
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body: %v", err)
		return false
	}
	return true
}
