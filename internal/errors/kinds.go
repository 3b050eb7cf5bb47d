package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Service error kinds. Services fail fast with the most specific kind; the
// handler layer maps each kind to a fixed status code and machine-readable
// code via Respond. Anything unclassified is reported as an internal error
// without detail.

// ValidationError marks malformed input. Never retried.
type ValidationError struct {
	Message string
	Details interface{}
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a ConflictError from a format string.
func Conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError covers both absent entities and entities owned by someone
// else, so cross-owner probing cannot distinguish the two.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFoundf builds a NotFoundError from a format string.
func NotFoundf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AuthError marks failed credential checks.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// AuthzError marks a failed role check.
type AuthzError struct {
	Message string
}

func (e *AuthzError) Error() string { return e.Message }

// ExecutionError wraps an underlying query-engine failure, timeouts included.
type ExecutionError struct {
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Executionf wraps err with a formatted message.
func Executionf(err error, format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...), Err: err}
}

// Respond maps a service error to its HTTP representation. The fallthrough
// logs nothing itself; callers that want the cause recorded log before
// responding.
func Respond(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		notFoundErr   *NotFoundError
		authErr       *AuthError
		authzErr      *AuthzError
		executionErr  *ExecutionError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondWithError(c, http.StatusBadRequest,
			NewAPIErrorWithDetails(ErrCodeInvalidInput, validationErr.Message, validationErr.Details))
	case errors.As(err, &conflictErr):
		Conflict(c, conflictErr.Message)
	case errors.As(err, &notFoundErr):
		NotFound(c, notFoundErr.Message)
	case errors.As(err, &authErr):
		RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeInvalidCredentials, authErr.Message))
	case errors.As(err, &authzErr):
		Forbidden(c, authzErr.Message)
	case errors.As(err, &executionErr):
		RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeQueryFailed, executionErr.Message))
	default:
		InternalError(c, "")
	}
}
