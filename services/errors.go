package services

import (
	"errors"
	"fmt"

	"expensetracker/backend/database"
)

var (
	// ErrUnauthenticated is returned when no owner identity was resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned for records that do not exist or belong to another user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor is returned for cursors that cannot be opened or were issued
	// for different filter criteria. Clients restart from the first page.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode is returned for a wrong, expired, used or exhausted sign-in code.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrProviderUnavailable is returned when third-party sign-in is not configured.
	ErrProviderUnavailable = errors.New("sign-in provider not configured")
)

// StorageError wraps a storage failure that is neither a missing record nor a
// validation problem. The operation may be retried by the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr translates store errors for callers of this package.
func storageErr(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
