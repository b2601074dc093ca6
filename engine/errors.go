package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes command rejections.
type ErrorCode string

const (
	// CodeValidation indicates malformed or missing input.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeCapacity indicates the participant cap is reached.
	CodeCapacity ErrorCode = "CAPACITY"

	// CodeState indicates the command is illegal in the current
	// lifecycle or workflow state.
	CodeState ErrorCode = "STATE"
)

// Error is a typed command rejection. Commands check everything before
// mutating, so an Error always means the aggregate was left untouched.
type Error struct {
	Code    ErrorCode
	Field   string // offending field, for validation errors
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(field, msg string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: msg}
}

func capacityErr(msg string) *Error {
	return &Error{Code: CodeCapacity, Message: msg}
}

func stateErr(msg string) *Error {
	return &Error{Code: CodeState, Message: msg}
}

// IsValidation reports whether err is a validation rejection.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeValidation
}

// IsCapacity reports whether err is a capacity rejection.
func IsCapacity(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeCapacity
}

// IsState reports whether err is an illegal-state rejection.
func IsState(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeState
}
