package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DomainError is an error with a stable code of the form EB-<AREA>-<NNNN>.
// The first three digits of NNNN are the HTTP status the error maps to.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError creates a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithDetails returns a copy carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Status returns the HTTP status encoded in the code, or 500 when the code
// carries none.
func (e *DomainError) Status() int {
	i := strings.LastIndex(e.Code, "-")
	if i < 0 || len(e.Code)-i-1 < 3 {
		return 500
	}
	n, err := strconv.Atoi(e.Code[i+1 : i+4])
	if err != nil || n < 400 || n > 599 {
		return 500
	}
	return n
}

// AsDomainError finds the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

// Navigation.
var (
	ErrParse           = NewDomainError("EB-NAV-4001", "malformed transcript")
	ErrIllegalMove     = NewDomainError("EB-NAV-4002", "illegal move")
	ErrInvalidPosition = NewDomainError("EB-NAV-4003", "invalid position")
)

// Connection.
var (
	ErrEmptyPosition     = NewDomainError("EB-CONN-4001", "position is required")
	ErrMalformedResponse = NewDomainError("EB-CONN-5020", "malformed analysis response")
	ErrTransport         = NewDomainError("EB-CONN-5030", "transport error")

	// ErrFallbackFailed is a non-2xx answer from the request/response endpoint.
	ErrFallbackFailed = NewDomainError("EB-CONN-5031", "fallback request failed")
)

// Engine.
var (
	ErrEngine            = NewDomainError("EB-ENG-5000", "engine failure")
	ErrEngineUnavailable = NewDomainError("EB-ENG-5031", "engine unavailable")
)

// ErrInvalidArgument is a rejected input value.
var ErrInvalidArgument = NewDomainError("EB-ARG-4000", "invalid argument")
