package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

func errorResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func nested(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_AppErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantCode   string
		wantIs     error
		wantMsg    string
	}{
		{
			name:       "catalog flat not found",
			status:     http.StatusNotFound,
			body:       `{"error_message":"Product 1bf0f365 not found","code":"not_found"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
			wantIs:     apperrors.ErrNotFound,
			wantMsg:    "catalog: Product 1bf0f365 not found",
		},
		{
			name:       "nested not found",
			status:     http.StatusNotFound,
			body:       nested("NOT_FOUND", "product not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
			wantIs:     apperrors.ErrNotFound,
		},
		{
			name:       "html not found",
			status:     http.StatusNotFound,
			body:       "<html>404</html>",
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
			wantIs:     apperrors.ErrNotFound,
		},
		{
			name:       "bad request",
			status:     http.StatusBadRequest,
			body:       nested("INVALID_INPUT", "malformed product id"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
			wantIs:     apperrors.ErrInvalidInput,
			wantMsg:    "catalog: malformed product id",
		},
		{
			name:       "conflict",
			status:     http.StatusConflict,
			body:       nested("CONFLICT", "version mismatch"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflict,
			wantIs:     apperrors.ErrConflict,
		},
		{
			name:       "unavailable",
			status:     http.StatusServiceUnavailable,
			body:       "overloaded",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeServiceUnavailable,
			wantIs:     apperrors.ErrServiceUnavail,
			wantMsg:    "catalog: overloaded",
		},
		{
			name:       "other structured 4xx keeps upstream code",
			status:     http.StatusTooManyRequests,
			body:       nested("RATE_LIMITED", "slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(errorResponse(tt.status, tt.body), "catalog")

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantStatus, appErr.Status)
			assert.Equal(t, tt.wantCode, appErr.Code)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestParseResponseError_PlainErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []string
	}{
		{"structured 500", http.StatusInternalServerError, nested("INTERNAL_ERROR", "something went wrong"), []string{"catalog server error", "500", "something went wrong"}},
		{"unstructured 502", http.StatusBadGateway, "Bad Gateway: upstream connection refused", []string{"502", "upstream connection refused"}},
		{"empty 500", http.StatusInternalServerError, "", []string{"500"}},
		{"null error envelope", http.StatusBadRequest, `{"error":null}`, []string{"returned status 400"}},
		{"unstructured 409", http.StatusConflict, "conflict", []string{"returned status 409"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(errorResponse(tt.status, tt.body), "catalog")
			require.Error(t, err)

			var appErr *apperrors.AppError
			assert.False(t, errors.As(err, &appErr))
			for _, s := range tt.want {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestParseResponseError_ClosesBody(t *testing.T) {
	body := newBody("gone")
	_ = ParseResponseError(&http.Response{StatusCode: http.StatusGone, Body: body}, "catalog")
	assert.True(t, body.closed)
}
