package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord        = errors.New("models: no matching record found")
	ErrUserNotFound    = errors.New("models: user not found")
	ErrInvalidPlatform = errors.New("models: unsupported platform")
)

// PersistenceError marks a failed entitlement write. It must never be masked
// as a vendor rejection: the decision was already made and the stored state
// is now stale until the caller retries.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
