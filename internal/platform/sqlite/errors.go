package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/maika/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better debugging information.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%w: check constraint violation: %v", store.ErrInvalidEntity, err)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: not null violation: %v", store.ErrInvalidEntity, err)
		}

		switch code & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
		}
	}

	return err
}

// IsBusy reports whether err is a SQLITE_BUSY or SQLITE_LOCKED failure,
// directly or after mapping.
func IsBusy(err error) bool {
	if errors.Is(err, store.ErrStorageUnavailable) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		primary := sqliteErr.Code() & 0xff
		return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
	}
	return false
}

// wrapError classifies a failed statement. Missing rows and constraint
// violations stay plain store errors; everything else is an I/O failure and
// becomes a *store.StorageError.
func wrapError(entity, operation string, err error) error {
	mapped := MapError(err)
	if errors.Is(mapped, store.ErrNotFound) ||
		errors.Is(mapped, store.ErrDuplicate) ||
		errors.Is(mapped, store.ErrInvalidEntity) {
		return mapped
	}
	return store.NewStorageError(entity, operation, mapped)
}
