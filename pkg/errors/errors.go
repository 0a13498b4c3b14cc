// Package errors defines the sentinel errors shared across the retrieval
// engine and an AppError wrapper that carries a human-readable message and an
// HTTP status for the service surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidQuery marks a boolean expression that cannot be evaluated:
	// an operator popped with too few operands, or a postfix sequence that
	// leaves anything but exactly one set on the stack.
	ErrInvalidQuery = errors.New("invalid boolean query")

	// ErrMissingArtifact marks an absent token/lemma/catalog file. Builds
	// treat it as a per-document skip, never as a fatal condition.
	ErrMissingArtifact = errors.New("preprocessing artifact missing")

	// ErrCorruptSnapshot marks a persisted index snapshot that fails to
	// parse or is missing expected fields. Loading falls back to a rebuild.
	ErrCorruptSnapshot = errors.New("corrupt index snapshot")

	// ErrVectorsMissing marks ranked-search requests made before TF-IDF
	// vectors were loaded for the requested term space.
	ErrVectorsMissing = errors.New("tfidf vectors not loaded")

	ErrCatalogUnavailable = errors.New("document catalog unavailable")
	ErrSnapshotNotReady   = errors.New("index snapshot not ready")
	ErrInternal           = errors.New("internal error")
)

// AppError pairs a sentinel with a specific message and an HTTP status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code the search service returns.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrSnapshotNotReady), errors.Is(err, ErrVectorsMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMissingArtifact), errors.Is(err, ErrCatalogUnavailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
