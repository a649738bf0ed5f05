package service

import (
	"fmt"

	"github.com/phrazzld/maika/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// Both wrap domain.ErrInvalidInput so callers can treat them as a re-prompt.
// Storage failures surface as *store.StorageError and are checked with
// store.IsStorageError.
var (
	// ErrInvalidXP indicates an XP award failed validation (unknown kind,
	// negative amount, empty user, unencodable metadata).
	ErrInvalidXP = fmt.Errorf("%w: xp award", domain.ErrInvalidInput)

	// ErrInvalidReview indicates a review request failed validation.
	ErrInvalidReview = fmt.Errorf("%w: review", domain.ErrInvalidInput)
)
