package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can create books, post recommendations, and
// like recommendations. The password is stored only as a bcrypt hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the fields required to persist a user.
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username", "username is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password", "password hash is required")
	}
	return nil
}
