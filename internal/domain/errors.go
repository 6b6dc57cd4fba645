package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// ErrTargetNotFoundOrInvalid is returned when an insert names a parent
	// that does not exist or is not a folder. The tree is left unchanged.
	ErrTargetNotFoundOrInvalid = errors.New("target not found or not a folder")

	// ErrImport is matched by every *ImportError.
	ErrImport = errors.New("import failed")

	// ErrGeneration is matched by every *GenerationError.
	ErrGeneration = errors.New("generation failed")

	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrIDExhausted means the allocator kept returning identifiers that are
	// already in use.
	ErrIDExhausted = errors.New("could not allocate a unique identifier")
)

// ImportError reports a malformed upload path. The whole import is rejected.
type ImportError struct {
	Path   string // Offending input path (may be empty for collection-level problems)
	Reason string
}

// Error implements the error interface
func (e *ImportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("import: %s", e.Reason)
	}
	return fmt.Sprintf("import %q: %s", e.Path, e.Reason)
}

// StatusCode implements the HTTPError interface
func (e *ImportError) StatusCode() int {
	return http.StatusBadRequest
}

// Is allows errors.Is() to match against ErrImport
func (e *ImportError) Is(target error) bool {
	return target == ErrImport
}

// GenerationError wraps any failure of the external generation provider:
// transport errors, provider errors and unusable responses alike.
type GenerationError struct {
	Provider string
	Err      error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation via %s failed", e.Provider)
	}
	return fmt.Sprintf("generation via %s failed: %v", e.Provider, e.Err)
}

// Unwrap exposes the provider cause
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusCode implements the HTTPError interface
func (e *GenerationError) StatusCode() int {
	return http.StatusBadGateway
}

// Is allows errors.Is() to match against ErrGeneration
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}
