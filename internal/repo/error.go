package repo

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned on a unique-constraint violation.
// For sessions it signals a concurrent create for the same (user, device)
// slot and is retryable by the caller.
var ErrAlreadyExists = errors.New("already exists")
