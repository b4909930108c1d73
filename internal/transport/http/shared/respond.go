// Package shared centralizes JSON envelopes and domain error translation so
// every feature handler responds identically.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "mandate/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// errorBody is the error envelope returned to clients. Message is safe for
// end users; internal causes never leak.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a coded domain error into an HTTP response.
// The code-to-status mapping lives here and nowhere else.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)

	message := ""
	var coded *dErrors.Error
	if status < http.StatusInternalServerError && errors.As(err, &coded) {
		// Client errors carry their message; server errors stay opaque.
		message = coded.Message
	}
	WriteJSON(w, status, errorBody{Error: string(code), Message: message})
}

// DecodeJSON decodes a request body into dst, translating failures into the
// caller-correctable bad request code.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
