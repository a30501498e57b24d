package errors

import (
	"fmt"
	"net/http"
)

var (
	ErrSourceFetchFailure = fmt.Errorf("source spreadsheet is unreachable")
	ErrUnknownSheet       = fmt.Errorf("unknown sheet key")
)

// HttpError carries an HTTP status together with a user-facing message
// and the wrapped internal cause for logs.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// NewSourceFetchError marks a failed refresh cycle as recoverable: the
// presentation layer keeps its previously rendered state and retries.
func NewSourceFetchError(err error) *HttpError {
	return &HttpError{
		Code:    http.StatusBadGateway,
		Message: "data source is temporarily unavailable",
		Err:     fmt.Errorf("%w: %v", ErrSourceFetchFailure, err),
	}
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
