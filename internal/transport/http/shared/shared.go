// Package shared centralizes JSON response writing so every module handler
// produces the same envelope and the same code-to-status mapping.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "agorax/pkg/domain-errors"
)

// errorEnvelope is the wire shape for every rejected request.
type errorEnvelope struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:          http.StatusBadRequest,
	dErrors.CodeInvalidInput:        http.StatusBadRequest,
	dErrors.CodeValidation:          http.StatusBadRequest,
	dErrors.CodeUnauthorized:        http.StatusUnauthorized,
	dErrors.CodeForbidden:           http.StatusForbidden,
	dErrors.CodeNotFound:            http.StatusNotFound,
	dErrors.CodeConflict:            http.StatusConflict,
	dErrors.CodeInvalidState:        http.StatusConflict,
	dErrors.CodeQuorumNotMet:        http.StatusConflict,
	dErrors.CodeEligibilityRejected: http.StatusUnprocessableEntity,
	dErrors.CodeInvariantViolation:  http.StatusConflict,
	dErrors.CodeUnavailable:         http.StatusServiceUnavailable,
	dErrors.CodeInternal:            http.StatusInternalServerError,
}

// WriteError translates a domain error into the JSON error envelope. Unknown
// errors map to 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	envelope := errorEnvelope{
		Error:   string(code),
		Details: dErrors.DetailsOf(err),
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		envelope.Message = domainErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}

// WriteJSON writes a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
