// Package errors provides the structured error taxonomy shared by the
// measurement processing packages. Every failure carries a machine-readable
// code so callers can distinguish a bad parameter from a computation that
// legitimately produced no result.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// CodeParseFailed marks an unreadable or malformed input file.
	CodeParseFailed Code = "PARSE_FAILED"
	// CodeValidationFailed marks an invalid parameter combination.
	CodeValidationFailed Code = "VALIDATION_FAILED"
	// CodeComputationFailed marks a derived computation that could not
	// produce a result, e.g. an empty selection window.
	CodeComputationFailed Code = "COMPUTATION_FAILED"
	// CodeMissingPrecondition marks an operation invoked before a
	// required prior step.
	CodeMissingPrecondition Code = "MISSING_PRECONDITION"
)

// Error is a coded error with optional structured details.
type Error struct {
	Code    Code
	Message string
	Details interface{}
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewWithDetails creates a coded error with additional details.
func NewWithDetails(code Code, message string, details interface{}) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap creates a coded error wrapping an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of err, or the empty code when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Validation creates a VALIDATION_FAILED error for one field.
func Validation(field, message string, value interface{}) *Error {
	return NewWithDetails(CodeValidationFailed, message, &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}
