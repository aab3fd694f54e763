package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique identifier for specific error conditions in Tabula.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001

	// Engine lifecycle
	ErrCodePoolExhausted     ErrorCode = 2001
	ErrCodeInvalidHandle     ErrorCode = 2002
	ErrCodeInvalidDefinition ErrorCode = 2003

	// Event queue
	ErrCodeEventOutOfRange ErrorCode = 3001
	ErrCodeQueueInit       ErrorCode = 3002
	ErrCodeQueueFull       ErrorCode = 3003

	// Dispatch
	ErrCodeCallbackFailed ErrorCode = 4001
)

// Sentinels for errors.Is. They compare equal to any *Error carrying the same code.
var (
	ErrConfigInvalid     = &Error{Code: ErrCodeConfigInvalid}
	ErrPoolExhausted     = &Error{Code: ErrCodePoolExhausted}
	ErrInvalidHandle     = &Error{Code: ErrCodeInvalidHandle}
	ErrInvalidDefinition = &Error{Code: ErrCodeInvalidDefinition}
	ErrEventOutOfRange   = &Error{Code: ErrCodeEventOutOfRange}
	ErrQueueInit         = &Error{Code: ErrCodeQueueInit}
	ErrQueueFull         = &Error{Code: ErrCodeQueueFull}
	ErrCallbackFailed    = &Error{Code: ErrCodeCallbackFailed}
)

// Error is a structured error carrying an error code,
// the operation being performed, and the underlying cause.
type Error struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error with the specified code, operation, message, and underlying error.
func New(code ErrorCode, op, msg string, err error) error {
	return &Error{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// Personal.AI order the ending
