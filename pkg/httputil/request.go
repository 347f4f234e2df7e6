package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeObject.
const MaxBodyBytes = 1 << 20

// DecodeObject decodes a JSON object body into dst. A missing body, an empty
// body, a JSON null, or an object with no keys is rejected as invalid input,
// as is anything that is not a JSON object.
func DecodeObject(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperrors.InvalidInput("request body is required")
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("read request body: %v", err))
	}
	if len(raw) > MaxBodyBytes {
		return apperrors.InvalidInput("request body is too large")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apperrors.InvalidInput("request body is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return apperrors.InvalidInput("request body must be a JSON object")
	}
	if len(fields) == 0 {
		return apperrors.InvalidInput("request body is required")
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
