// Package apperrors defines the error taxonomy the service layer reports
// and the HTTP status each kind maps to. Services wrap these sentinels
// with %w and handlers translate them with HTTPStatus.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidRequest marks malformed or self-referential input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrConflict marks a duplicate collaboration request or a response
	// to a request that is no longer pending.
	ErrConflict = errors.New("conflict")
	// ErrForbidden marks an operation the caller is not allowed to
	// perform, such as assigning a task outside an accepted collaboration.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks an unknown entity id.
	ErrNotFound = errors.New("not found")
)

// HTTPStatus maps a service error to the status code the API reports.
// Unrecognized errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	// Conflicts report 400 rather than 409: the API treats a duplicate
	// request or a stale accept as bad input, same as the client expects.
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
