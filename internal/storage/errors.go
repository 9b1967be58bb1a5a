package storage

import "errors"

var (
	// ErrNotFound is returned when a record is not in its collection.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create would duplicate a unique key.
	ErrConflict = errors.New("conflict")
	// ErrPermissionDenied is returned when the caller's role does not allow
	// the mutation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid")
	// ErrInvalidCredentials is returned by UserService.Authenticate.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrTooLarge is returned when an upload exceeds its limit.
	ErrTooLarge = errors.New("too large")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
