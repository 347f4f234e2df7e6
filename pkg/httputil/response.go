package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes data inside the standard envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// sentinelErrors maps bare sentinels to their public code. An empty message
// means the error text itself is shown to the client.
var sentinelErrors = []struct {
	target  error
	code    string
	message string
}{
	{apperrors.ErrNotFound, apperrors.CodeNotFound, "resource not found"},
	{apperrors.ErrAlreadyExists, apperrors.CodeAlreadyExists, "resource already exists"},
	{apperrors.ErrValidation, apperrors.CodeValidationFailed, ""},
	{apperrors.ErrConflict, apperrors.CodeConflict, ""},
	{apperrors.ErrInvalidInput, apperrors.CodeInvalidInput, ""},
	{apperrors.ErrServiceUnavail, apperrors.CodeServiceUnavailable, "service unavailable"},
}

// toErrorResponse converts err into a status and envelope body. Unknown
// errors become an opaque 500.
func toErrorResponse(err error) (int, *ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, &ErrorResponse{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}
	}
	for _, s := range sentinelErrors {
		if !errors.Is(err, s.target) {
			continue
		}
		msg := s.message
		if msg == "" {
			msg = err.Error()
		}
		return apperrors.HTTPStatus(err), &ErrorResponse{Code: s.code, Message: msg}
	}
	return http.StatusInternalServerError, &ErrorResponse{Code: apperrors.CodeInternal, Message: "an internal error occurred"}
}

// WriteError writes err in the standard envelope, tagged with the request's
// correlation ID. Server-side failures are logged through the request-scoped
// logger, or fallback when the request carries none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	ctx := r.Context()
	status, body := toErrorResponse(err)
	body.RequestID = logger.CorrelationIDFromContext(ctx)

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(ctx)
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(ctx, "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}
