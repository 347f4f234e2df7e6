package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the service and its collaborators.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// Public error codes carried in the response envelope.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeConflict           = "CONFLICT"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError is an error with a public code, message and HTTP status.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code string, status int, cause error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: cause}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return newAppError(CodeNotFound, http.StatusNotFound, ErrNotFound,
		fmt.Sprintf("%s %s not found", resource, id))
}

// AlreadyExists creates a 409 error for a duplicate key.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(CodeAlreadyExists, http.StatusConflict, ErrAlreadyExists,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

// Conflict creates a 409 error for a state conflict that is not a duplicate key.
func Conflict(message string) *AppError {
	return newAppError(CodeConflict, http.StatusConflict, ErrConflict, message)
}

// ValidationFailed creates a 409 error carrying field-level details. Customer
// payloads that decode but break shape rules are conflicts, not bad requests.
func ValidationFailed(fields map[string]string) *AppError {
	e := newAppError(CodeValidationFailed, http.StatusConflict, ErrValidation, "customer data failed validation")
	e.Fields = fields
	return e
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError(CodeInvalidInput, http.StatusBadRequest, ErrInvalidInput, message)
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return newAppError(CodeServiceUnavailable, http.StatusServiceUnavailable, ErrServiceUnavail, message)
}

// Internal creates a 500 error around err. The cause never reaches clients.
func Internal(err error) *AppError {
	return newAppError(CodeInternal, http.StatusInternalServerError, err, "an internal error occurred")
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for err. An AppError anywhere in the
// chain wins over a bare sentinel.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
