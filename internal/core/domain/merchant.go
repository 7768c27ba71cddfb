package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is an intermediate coin holder. It rents coins from the admin
// and distributes them to its clients. The wallet ID is a second unique
// token, distinct from the primary ID, handed out for external reference.
type Merchant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
