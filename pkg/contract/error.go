package contract

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorCodeInvalidConfig   ErrorCode = "INVALID_CONFIG"
	ErrorCodeTrackingBackend ErrorCode = "TRACKING_BACKEND"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeEmitter         ErrorCode = "EMITTER"
	ErrorCodeStateStore      ErrorCode = "STATE_STORE"
	ErrorCodeInternal        ErrorCode = "INTERNAL"
)

type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	err := &Error{Code: code, Message: fmt.Sprintf(format, args...)}
	for _, arg := range args {
		if cause, ok := arg.(error); ok {
			err.cause = cause
		}
	}

	return err
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf classifies an arbitrary error at the process boundary.
func CodeOf(err error) ErrorCode {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}

	return ErrorCodeInternal
}
