package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Failure classifies why a provider query did not produce content.
type Failure int

const (
	// FailureTransport covers network errors, timeouts and cancellation.
	FailureTransport Failure = iota
	// FailureHTTP means the provider answered with a non-success status.
	FailureHTTP
	// FailureMalformed means a response arrived without usable content.
	FailureMalformed
	// FailureDisabled means no provider is configured.
	FailureDisabled
)

func (f Failure) String() string {
	switch f {
	case FailureHTTP:
		return "http failure"
	case FailureMalformed:
		return "malformed response"
	case FailureDisabled:
		return "disabled"
	default:
		return "transport failure"
	}
}

// Error is the only error type returned by Provider.Query.
type Error struct {
	Failure    Failure
	Provider   string
	StatusCode int // set for FailureHTTP
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Failure)
	if e.Failure == FailureHTTP {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPFailure reports a non-success status code.
func HTTPFailure(provider string, status int, cause error) *Error {
	return &Error{Failure: FailureHTTP, Provider: provider, StatusCode: status, Err: cause}
}

// TransportFailure reports a network-level failure.
func TransportFailure(provider string, cause error) *Error {
	return &Error{Failure: FailureTransport, Provider: provider, Err: cause}
}

// MalformedResponse reports a response without usable content.
func MalformedResponse(provider, reason string) *Error {
	return &Error{Failure: FailureMalformed, Provider: provider, Err: errors.New(reason)}
}

// RequestFailure classifies an error that arrived without a status code.
// Network errors and cancellation are transport failures; anything else
// means the response could not be decoded into a completion.
func RequestFailure(provider string, err error) *Error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return TransportFailure(provider, err)
	}
	return &Error{Failure: FailureMalformed, Provider: provider, Err: err}
}

// Recovered converts a panic raised while querying into a provider error.
func Recovered(provider string, r any) *Error {
	return &Error{Failure: FailureMalformed, Provider: provider, Err: fmt.Errorf("panic: %v", r)}
}

// FailureOf extracts the failure class of err. ok is false when err is not
// a provider error.
func FailureOf(err error) (f Failure, ok bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Failure, true
	}
	return FailureTransport, false
}
