package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a SiteError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *SiteError {
	if err == nil {
		return nil
	}

	// Keep the resource and context of an inner SiteError
	var se *SiteError
	if errors.As(err, &se) {
		return &SiteError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    se,
			Context:  se.Context,
			Resource: se.Resource,
		}
	}

	return &SiteError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error for the named resource
func WrapIO(err error, code, message, resource string) *SiteError {
	se := Wrap(err, ErrorTypeIO, code, message)
	if se != nil {
		se.Resource = resource
	}
	return se
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *SiteError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *SiteError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *SiteError {
	return Wrap(err, ErrorTypeInternal, code, message)
}

// GetErrorContext returns the context map of a SiteError, or nil
func GetErrorContext(err error) map[string]interface{} {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Context
	}
	return nil
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
