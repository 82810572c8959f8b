package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors - wrap with fmt.Errorf("%w: ...") and match with errors.Is()
var (
	// ErrNotFound indicates the operation targets an id that does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input: unknown item type, bad reorder set,
	// reference to a non-existent parent folder, or a move that would create a cycle
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternal indicates a persistence failure. Its detail must not reach API callers.
	ErrInternal = errors.New("internal error")
)

// StatusCode maps an error to the HTTP status code of its taxonomy class.
// Errors outside the taxonomy are treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
