package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrAuth means there is no valid token and the interactive refresh has
	// not completed yet. Recoverable: the user retries after finishing the
	// browser flow.
	ErrAuth = errors.New("not authenticated")

	// ErrSession means a remote picker call failed or the session is in an
	// unexpected state. Recoverable: surfaced as a notice, user may retry.
	ErrSession = errors.New("picker session failure")

	// ErrValidation means malformed or inverted input; the flow never starts.
	ErrValidation = errors.New("invalid input")

	// ErrIO means a vault write failed. Surfaced per item; a failed media
	// write does not abort the remaining batch.
	ErrIO = errors.New("vault io failure")

	// ErrListenerBusy means the local OAuth redirect port is already bound.
	// Distinct from token failures so the user gets actionable guidance.
	ErrListenerBusy = errors.New("redirect listener port already in use")

	ErrNotFound = errors.New("not found")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsAuth returns true if the error is an authentication error
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsSession returns true if the error is a picker session error
func IsSession(err error) bool {
	return errors.Is(err, ErrSession)
}

// IsValidation returns true if the error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsListenerBusy returns true if the local redirect port could not be bound
func IsListenerBusy(err error) bool {
	return errors.Is(err, ErrListenerBusy)
}
