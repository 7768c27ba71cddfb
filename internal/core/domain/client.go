package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is an end holder of coins, owned by exactly one merchant.
// Client names are unique store-wide so that name-keyed transfer
// operations are unambiguous.
type Client struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Balance    int64     `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
