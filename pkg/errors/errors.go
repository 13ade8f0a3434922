// Package errors provides structured error types for dotview.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library facade
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The rendering pipeline distinguishes a small taxonomy:
//   - RENDER_FAILED: the layout engine produced empty or undecodable output
//   - DECODE_FAILED: bytes are not a recognized image
//   - IO_ERROR: an unwritable destination, a missing engine executable, or a
//     missing destination filename
//   - UNSUPPORTED: an image format the store cannot encode
//
// # Usage
//
//	err := errors.New(errors.ErrCodeIO, "missing destination filename")
//	if errors.Is(err, errors.ErrCodeIO) {
//	    // Handle I/O failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "decode %d bytes", len(data))
//
// Typed errors that carry their own payload (such as the engine's RenderError)
// take part in [Is] and [GetCode] by implementing Code() Code.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Rendering errors
	ErrCodeRender Code = "RENDER_FAILED"
	ErrCodeDecode Code = "DECODE_FAILED"

	// Input/output errors
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by typed errors that carry a code but not an *Error.
type coder interface {
	error
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the first *Error or coded error.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if nothing in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// It looks at the first coded error in the chain, as GetCode does: an *Error
// yields its message without the code prefix, while a typed coded error
// (such as a render diagnostic) owns its full text and yields err.Error().
// Uncoded errors return the error string as-is.
func UserMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch c := e.(type) {
		case *Error:
			return c.Message
		case coder:
			return c.Error()
		}
	}
	return err.Error()
}

// IsIOError reports whether err belongs to the I/O failure class: an
// unwritable destination, a missing executable, or an unsupported format.
func IsIOError(err error) bool {
	switch GetCode(err) {
	case ErrCodeIO, ErrCodeUnsupported:
		return true
	}
	return false
}
