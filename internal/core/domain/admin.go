package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a back-office operator account.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Argon2id encoded hash
	CreatedAt    time.Time `json:"created_at"`
}
