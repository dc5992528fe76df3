package certificate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition indicates a lifecycle action was attempted from a
	// state that does not permit it. The record is left unchanged.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrUnauthorized indicates the acting principal lacks the permission the
	// attempted transition requires.
	ErrUnauthorized = errors.New("actor not permitted for this operation")
)

// ValidationError reports malformed or missing input fields. It is
// recoverable: the caller can correct the input and retry.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
