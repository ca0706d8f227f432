package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a third-party SMM provider. APIKeyEnc is AES-256-GCM
// encrypted at rest; the plaintext key never leaves the server tier.
type Provider struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	APIURL    string    `json:"api_url"`
	APIKeyEnc string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
