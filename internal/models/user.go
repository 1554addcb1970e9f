package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Trip collaborators are Users; expense
// participants within a trip remain name strings (see Payer).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the login identifier, unique across users.
	Email string `json:"email"`

	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password. Never
	// serialized.
	PasswordHash string `json:"-"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewUser builds a user with a fresh ID and timestamps. The password must
// already be hashed.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
