package service

import (
	"errors"
	"fmt"

	"typeroo-api/internal/repository"
)

// ErrNotFound is returned when the addressed user or entity no longer exists.
var ErrNotFound = errors.New("not found")

// ValidationError is a rejected request: malformed input or a policy
// violation. Its message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyQuery             = &ValidationError{Message: "Query cannot be empty"}
	ErrInvalidCurrentPassword = &ValidationError{Message: "Error: Invalid current password"}
	ErrUsernameTaken          = &ValidationError{Message: "Error: Username is already taken!"}
	ErrUsernameChangeTooSoon  = &ValidationError{Message: "Error: You can only change your username once a month."}
	ErrEmailInUse             = &ValidationError{Message: "Error: Email is already in use!"}
	ErrEmptyContent           = &ValidationError{Message: "Content cannot be empty"}
	ErrCannotDeleteText       = &ValidationError{Message: "Error: Cannot delete text"}
	ErrInvalidFilename        = &ValidationError{Message: "Filename contains invalid path sequence"}
)

// notFound maps repository misses onto ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
