package service

import (
	"errors"
	"fmt"
)

// validationError reports bad input back to the HTTP layer.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func invalid(format string, args ...interface{}) error {
	return validationError{message: fmt.Sprintf(format, args...)}
}

// IsValidation tells input errors apart from store and host failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// ErrStore wraps failures of the document store so handlers can answer with
// a gateway error instead of a generic 500.
var (
	ErrStore  = errors.New("store unavailable")
	ErrUpload = errors.New("image upload failed")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStore, err)
}
