// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the upgrade client.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrTransportClosed  = fmt.Errorf("transport is closed")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrOperationTimeout = fmt.Errorf("operation timeout")
	ErrNotSupported     = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeTimeout
	ErrCodeNotSupported
	ErrCodeHandshake
	ErrCodeInternal
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidArgument: ErrInvalidArgument,
	ErrCodeTimeout:         ErrOperationTimeout,
	ErrCodeNotSupported:    ErrNotSupported,
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap maps the code onto its sentinel so errors.Is(err, ErrNotSupported) works.
func (e *Error) Unwrap() error {
	return codeSentinels[e.Code]
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
