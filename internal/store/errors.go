package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageUnavailable is returned when the database is busy or locked
	// and the operation could not complete.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrReviewNotFound indicates that no review record exists for a user and item.
	ErrReviewNotFound = fmt.Errorf("%w: srs review", ErrNotFound)

	// ErrLeaderboardEntryNotFound indicates that the user has no leaderboard entry yet.
	ErrLeaderboardEntryNotFound = fmt.Errorf("%w: leaderboard entry", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StorageError reports an I/O failure of the embedded store. It is the only
// error class that is allowed to abort a conversation turn.
type StorageError struct {
	Entity    string // The entity type (e.g., "user", "xp_event")
	Operation string // The operation that failed (e.g., "insert", "upsert")
	Err       error  // Original error
}

// Error implements the error interface for StorageError.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error: %s on %s failed: %v", e.Operation, e.Entity, e.Err)
	}
	return fmt.Sprintf("storage error: %s on %s failed", e.Operation, e.Entity)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(entity, operation string, err error) *StorageError {
	return &StorageError{
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}

// IsStorageError reports whether err or any error it wraps is a *StorageError.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
