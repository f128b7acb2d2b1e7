/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and includes a business code, a user-friendly message, and an HTTP status code for unified error reporting.
*/
package errs

import (
	"fmt"
	"net/http"

	"pairchat/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
// It carries a business code and the HTTP status used when it reaches a response.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the standard HTTP status code corresponding to this error.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError returns a fresh *CustomError for a predefined error code.
// Unknown codes are logged and resolved to ErrUnknown. When cause is given it is logged
// alongside the code; it never leaks into the client-facing message.
func NewError(code int, cause ...error) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr
	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	for _, c := range cause {
		if c != nil {
			logx.Warn("Request failed", "code", customErr.Code, "cause", c.Error())
		}
	}

	return &customErr
}
