// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Block  *uint64           `json:"block,omitempty"`
}

// NewResponse builds the response and status code for an error coming out
// of a handler. Errors the api doesn't know about are reported as internal
// errors without leaking their message.
func NewResponse(err error) (Response, int) {
	var resp Response
	var status int

	switch {
	case validate.IsFieldErrors(err):
		resp = Response{
			Error:  "data validation error",
			Fields: validate.GetFieldErrors(err).Fields(),
		}
		status = http.StatusBadRequest

	case IsTrusted(err):
		reqErr := GetTrusted(err)
		resp = Response{
			Error: reqErr.Error(),
		}
		status = reqErr.Status

	case database.IsIntegrityError(err):
		resp = Response{
			Error: err.Error(),
		}
		status = http.StatusConflict

	default:
		return Response{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError
	}

	if ie := database.GetIntegrityError(err); ie != nil {
		number := ie.Number
		resp.Block = &number
	}

	return resp, status
}

// =============================================================================

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is and errors.As access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
