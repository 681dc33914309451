package domain

import "errors"

// domainErr is the base of the caller-facing error kinds.
type domainErr struct {
	message string
}

// Error returns the error message.
func (e domainErr) Error() string {
	return e.message
}

// ValidationErr represents an invalid request shape or configuration value.
type ValidationErr struct {
	domainErr
}

// NewValidationErr creates a new ValidationErr with the given message.
func NewValidationErr(message string) *ValidationErr {
	return &ValidationErr{
		domainErr: domainErr{message: message},
	}
}

// RangeErr represents a seed index outside the catalog bounds.
type RangeErr struct {
	domainErr
}

// NewRangeErr creates a new RangeErr with the given message.
func NewRangeErr(message string) *RangeErr {
	return &RangeErr{
		domainErr: domainErr{message: message},
	}
}

// UnavailableErr is returned when no valid artifact can be served.
// It wraps the underlying load failure.
type UnavailableErr struct {
	domainErr
	cause error
}

// NewUnavailableErr creates a new UnavailableErr wrapping cause.
func NewUnavailableErr(message string, cause error) *UnavailableErr {
	if cause != nil {
		message = message + ": " + cause.Error()
	}
	return &UnavailableErr{
		domainErr: domainErr{message: message},
		cause:     cause,
	}
}

// Unwrap returns the underlying cause.
func (e *UnavailableErr) Unwrap() error {
	return e.cause
}

// IsBadRequest reports whether err is a caller mistake (validation or range).
func IsBadRequest(err error) bool {
	var verr *ValidationErr
	var rerr *RangeErr
	return errors.As(err, &verr) || errors.As(err, &rerr)
}

// IsUnavailable reports whether err means no artifact could be served.
func IsUnavailable(err error) bool {
	var uerr *UnavailableErr
	return errors.As(err, &uerr)
}
