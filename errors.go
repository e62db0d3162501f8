package roomcast

import (
	"errors"
	"fmt"
)

// Error represents a roomcast library error with categorization.
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error (if any)
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code. This lets callers match
// wrapped errors against the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Err == nil
}

// Error codes for roomcast operations.
const (
	// ErrCodeNoData indicates no data was found.
	ErrCodeNoData = "NO_DATA"

	// ErrCodeValidation indicates validation failed.
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeConfiguration indicates invalid configuration.
	ErrCodeConfiguration = "CONFIGURATION_ERROR"

	// ErrCodeDatabase indicates an archive write or read failed.
	ErrCodeDatabase = "DATABASE_ERROR"

	// ErrCodeRoomClosed indicates the room's broadcast engine has stopped.
	ErrCodeRoomClosed = "ROOM_CLOSED"

	// ErrCodeSubscriptionClosed indicates the subscription was closed.
	ErrCodeSubscriptionClosed = "SUBSCRIPTION_CLOSED"

	// ErrCodeRegistryClosed indicates the registry no longer accepts rooms.
	ErrCodeRegistryClosed = "REGISTRY_CLOSED"
)

// Common errors.
var (
	// ErrNoData is returned when a query returns no results.
	ErrNoData = &Error{
		Code:    ErrCodeNoData,
		Message: "no data found",
	}

	// ErrRoomClosed is returned by publish and join operations on a closed room.
	ErrRoomClosed = &Error{
		Code:    ErrCodeRoomClosed,
		Message: "room is closed",
	}

	// ErrSubscriptionClosed is returned by Next once the subscription is closed
	// or its room has shut down.
	ErrSubscriptionClosed = &Error{
		Code:    ErrCodeSubscriptionClosed,
		Message: "subscription is closed",
	}

	// ErrRegistryClosed is returned by GetOrCreate after Close.
	ErrRegistryClosed = &Error{
		Code:    ErrCodeRegistryClosed,
		Message: "registry is closed",
	}
)

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithCause creates a new Error wrapping an underlying error.
func NewErrorWithCause(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// IsNoData checks if an error is ErrNoData.
func IsNoData(err error) bool {
	return hasCode(err, ErrCodeNoData)
}

// IsClosed reports whether err signals a closed room, subscription or registry.
func IsClosed(err error) bool {
	return hasCode(err, ErrCodeRoomClosed) ||
		hasCode(err, ErrCodeSubscriptionClosed) ||
		hasCode(err, ErrCodeRegistryClosed)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
