package httpx

import (
	"errors"
	"net/http"

	"github.com/taskward/taskward/internal/shared"
)

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrDuplicate),
		errors.Is(err, shared.ErrSelfModification):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrAuthorization),
		errors.Is(err, shared.ErrProtectedResource):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps a domain error onto the JSON envelope and records the
// message in the request's audit capture. Unanticipated errors surface as a
// generic 500 without leaking internals.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	if r != nil {
		shared.SetAuditError(r.Context(), message)
	}
	JSON(w, status, Envelope{Success: false, Error: message})
}
