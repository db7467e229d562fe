package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. PasswordHash is a bcrypt hash and must never
// be serialized to the wire; handlers map User to a response type without it.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
