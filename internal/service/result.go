package service

import (
	"net/http"

	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
)

// Result is the outcome of every CustomerService operation: an HTTP-style
// status, the payload on success and the error on failure.
type Result struct {
	Status int
	Data   any
	Err    error
}

// HasError reports whether the status is 300 or above.
func (r Result) HasError() bool {
	return r.Status >= http.StatusMultipleChoices
}

func ok(data any) Result {
	return Result{Status: http.StatusOK, Data: data}
}

func fail(err error) Result {
	return Result{Status: apperrors.HTTPStatus(err), Err: err}
}
