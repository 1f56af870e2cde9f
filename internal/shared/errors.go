package shared

import "errors"

var (
	// ErrValidation indicates malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique-constraint violation on name or email.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrNotFound indicates the id does not resolve to a record.
	ErrNotFound = errors.New("not found")
	// ErrProtectedResource indicates an attempted mutation of a system-flagged entity.
	ErrProtectedResource = errors.New("protected system resource")
	// ErrAuthentication indicates a missing, invalid or expired credential.
	ErrAuthentication = errors.New("not authenticated")
	// ErrAuthorization indicates a valid credential lacking the required permission.
	ErrAuthorization = errors.New("permission denied")
	// ErrSelfModification indicates an administrator acting on their own account.
	ErrSelfModification = errors.New("cannot modify own account")
)
