package restclient

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedMethod  = errors.New("unsupported method")
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrUnexpectedStatus   = errors.New("unexpected status")
	ErrInvalidJSON        = errors.New("invalid JSON response")
)

// UnsupportedMethodError is returned by Request for methods other than
// GET, POST, PUT, DELETE and PATCH. No request is sent.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q", e.Method)
}

func (e *UnsupportedMethodError) Is(target error) bool {
	return target == ErrUnsupportedMethod
}

// UnreachableError reports a login probe that did not succeed.
type UnreachableError struct {
	URL        string
	StatusCode int
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("service unreachable: GET %s returned HTTP %d", e.URL, e.StatusCode)
}

func (e *UnreachableError) Is(target error) bool {
	return target == ErrServiceUnreachable
}

// StatusError represents a response with a status code of 400 or above.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// ParseError reports a response body that could not be decoded as JSON.
type ParseError struct {
	StatusCode int
	Snippet    string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse JSON response (HTTP %d, body %q): %v", e.StatusCode, e.Snippet, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidJSON
}
