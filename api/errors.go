// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-selector.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrAlreadyRegistered indicates the descriptor is already present in
	// the selector's registration table.
	ErrAlreadyRegistered = errors.New("descriptor already registered with selector")

	// ErrInvalidTimeout indicates a negative select timeout.
	ErrInvalidTimeout = errors.New("time interval must be non-negative")

	// ErrSelectorClosed indicates an operation on a closed selector.
	ErrSelectorClosed = errors.New("selector is closed")

	// ErrNotSupported indicates the platform has no notification engine.
	ErrNotSupported = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeAlreadyRegistered
	ErrCodeInvalidTimeout
	ErrCodeClosed
	ErrCodeNotSupported
	ErrCodeSystem
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause attaches an underlying cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}
