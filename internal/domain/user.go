package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyUserID is returned when a user ID is blank.
var ErrEmptyUserID = errors.New("user ID cannot be empty")

// User is a participant known to the progress engine. Users are created
// lazily the first time they earn XP or review an item and are never deleted.
type User struct {
	ID          string    `json:"user_id"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser creates a User with the given ID and optional display name.
func NewUser(id string, displayName *string) (*User, error) {
	user := &User{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyUserID
	}
	return nil
}
