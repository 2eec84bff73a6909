// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-kv.

package api

import "fmt"

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeInvalidArgument ErrorCode = iota + 1
	ErrCodeOutOfMemory
	ErrCodeTimeout
	ErrCodeNotSupported
	ErrCodeAlreadyExists
	ErrCodeNotFound
	ErrCodeWouldShrink
	ErrCodeInternal
	ErrCodeWrongType
)

// Common errors used across the library. They are *Error values, so a copy
// decorated with WithContext still matches under errors.Is.
var (
	ErrInvalidArgument      = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrOutOfMemory          = NewError(ErrCodeOutOfMemory, "out of memory")
	ErrOperationTimeout     = NewError(ErrCodeTimeout, "operation timeout")
	ErrNotSupported         = NewError(ErrCodeNotSupported, "operation not supported")
	ErrKeyExists            = NewError(ErrCodeAlreadyExists, "key already exists")
	ErrNotFound             = NewError(ErrCodeNotFound, "key not found")
	ErrWouldShrinkBelowUsed = NewError(ErrCodeWouldShrink, "resize would shrink below used count")
	ErrWrongType            = NewError(ErrCodeWrongType, "operation against a key holding the wrong kind of value")
	ErrInternal             = NewError(ErrCodeInternal, "internal error")
)

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

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of the error carrying an extra context value.
// Package-level sentinels are never mutated.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx}
}
