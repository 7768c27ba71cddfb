package domain

import (
	"time"

	"github.com/google/uuid"
)

// InitialSupply is the total issuable coin supply, granted to the
// administrator at provisioning time. Coins only ever move between the
// admin, merchants and clients; rent/distribute/return never change the
// system-wide total.
const InitialSupply int64 = 999_999_999

// Admin is the singleton coin issuer. At most one row exists for the
// lifetime of the store.
type Admin struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	CredentialHash string    `json:"-"` // Argon2id, never expose
	Balance        int64     `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
