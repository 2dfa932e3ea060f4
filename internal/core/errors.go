package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of them so callers can
// branch with errors.Is regardless of the message.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Error is a domain error with a human readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validationf builds a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error (duplicate natural key).
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidYear        = &Error{Kind: ErrValidation, Msg: fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear)}
	ErrInvalidMonth       = &Error{Kind: ErrValidation, Msg: "month must be between 1 and 12"}
	ErrInvalidDay         = &Error{Kind: ErrValidation, Msg: "day is not valid for the given month"}
	ErrInvalidAmount      = &Error{Kind: ErrValidation, Msg: "amount must be greater than zero"}
	ErrNegativeAmount     = &Error{Kind: ErrValidation, Msg: "amount cannot be negative"}
	ErrInvalidType        = &Error{Kind: ErrValidation, Msg: "type must be 1 (income) or 2 (expense)"}
	ErrCategoryRequired   = &Error{Kind: ErrValidation, Msg: "expense transactions require a category"}
	ErrEmptyName          = &Error{Kind: ErrValidation, Msg: "name is required"}
	ErrNameTooLong        = &Error{Kind: ErrValidation, Msg: fmt.Sprintf("name too long (max %d characters)", MaxCategoryName)}
	ErrEmptyDescription   = &Error{Kind: ErrValidation, Msg: "description is required"}
	ErrDescriptionTooLong = &Error{Kind: ErrValidation, Msg: fmt.Sprintf("description too long (max %d characters)", MaxDescription)}
)

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
