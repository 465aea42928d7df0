package utils

import (
	"errors"
	"fmt"
)

// Common application errors used across services.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryExists     = errors.New("category already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyReviewed    = errors.New("product already reviewed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("not authorized")
	ErrMissingMessage     = errors.New("message is required")
	ErrMissingUserID      = errors.New("user ID is required")
	ErrMissingImage       = errors.New("no image file provided")
	ErrInvalidImage       = errors.New("only image files are allowed")
	ErrImageTooLarge      = errors.New("image exceeds the upload size limit")
	ErrEmptyOrder         = errors.New("no order items")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a ValidationError with the formatted message.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
