package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrSenderNotFound         = errors.New("sender not found")
	ErrReceiverNotFound       = errors.New("receiver not found")
	ErrSelfTransferNotAllowed = errors.New("cannot send money to yourself")
	ErrNotConnected           = errors.New("receiver is not one of your connections")
	ErrUserNotFound           = errors.New("user not found")
	ErrSelfConnection         = errors.New("cannot add yourself")
	ErrEmailAlreadyUsed       = errors.New("email already used")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidInput           = errors.New("invalid input")
)

// ValidationError pairs a sentinel error with a message that is safe to show
// to end users.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError for the given sentinel.
func Invalid(err error, message string) error {
	return &ValidationError{Err: err, Message: message}
}

// StorageError reports a persistence failure. Its detail is meant for logs,
// not for users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError. It returns nil when err is nil
// and leaves errors that are already StorageErrors untouched.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err originates from the persistence layer.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// UserMessage returns the message that may be displayed for err, or false
// when err carries nothing user-facing.
func UserMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error(), true
	}
	for _, known := range []error{
		ErrInvalidAmount, ErrSenderNotFound, ErrReceiverNotFound,
		ErrSelfTransferNotAllowed, ErrNotConnected, ErrUserNotFound,
		ErrSelfConnection, ErrEmailAlreadyUsed, ErrInvalidCredentials,
		ErrTransactionNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error(), true
		}
	}
	return "", false
}
