package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

const maxErrorBody = 1 << 20

// upstreamError accepts the nested {"error":{"code","message"}} envelope and
// the flat {"code","error_message"} form the product catalog returns.
type upstreamError struct {
	Nested *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code         string `json:"code"`
	ErrorMessage string `json:"error_message"`
}

func decodeUpstreamError(body []byte) (code, message string, ok bool) {
	var u upstreamError
	if json.Unmarshal(body, &u) != nil {
		return "", "", false
	}
	if u.Nested != nil {
		return u.Nested.Code, u.Nested.Message, true
	}
	if u.Code != "" || u.ErrorMessage != "" {
		return u.Code, u.ErrorMessage, true
	}
	return "", "", false
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// converts it to an error. Statuses with a local meaning (404, 400, 409, 503)
// become AppErrors; other 5xx stay plain errors so they surface as internal.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	code, message, structured := decodeUpstreamError(body)
	if !structured {
		message = strings.TrimSpace(string(body))
	}
	detail := upstream + ": " + message

	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		if !structured {
			return apperrors.NotFound(upstream, "resource")
		}
		e := apperrors.NotFound(upstream, "resource")
		e.Message = detail
		return e
	case status == http.StatusBadRequest && structured:
		return apperrors.InvalidInput(detail)
	case status == http.StatusConflict && structured:
		return apperrors.Conflict(detail)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(detail)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	case structured:
		return &apperrors.AppError{Code: code, Message: detail, Status: status}
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, status, message)
	}
}
