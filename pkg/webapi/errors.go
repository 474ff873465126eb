package webapi

import (
	"errors"
	"fmt"
)

// ErrWebAPI matches every error produced by this package via errors.Is.
var ErrWebAPI = errors.New("web api error")

// Error messages below keep the exact wording existing consumers match on.
//
//nolint:staticcheck // ST1005
var (
	ErrInvalidKey   = &keyError{msg: "This is not a valid Steam Web API key."}
	ErrUnauthorized = &keyError{msg: "Your Web API request has been rejected. You most likely did not specify a valid Web API key."}
)

type keyError struct{ msg string }

func (e *keyError) Error() string        { return e.msg }
func (e *keyError) Is(target error) bool { return target == ErrWebAPI }

// HTTPError reports a non-2xx, non-401 response.
type HTTPError struct {
	StatusCode int
	Reason     string
	// Detail is the title of an HTML error page, when the server sent one.
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("The Web API request has failed due to an HTTP error: %s (status code: %d).", e.Reason, e.StatusCode)
}

func (e *HTTPError) Is(target error) bool { return target == ErrWebAPI }

// TransportError wraps a fault below HTTP: connection, TLS, body read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string        { return "Could not communicate with the Web API." }
func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrWebAPI }

// MalformedJSONError reports a body that is not JSON or lacks a required field.
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("The Web API response could not be parsed: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error        { return e.Err }
func (e *MalformedJSONError) Is(target error) bool { return target == ErrWebAPI }

// StatusError reports a result envelope whose status is not 1.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("The Web API request failed with the following error: %s (status code: %d).", e.Detail, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrWebAPI }
