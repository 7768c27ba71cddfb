package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of coin movement.
type TransactionKind string

const (
	// TransactionKindRent moves coins from the admin to a merchant.
	TransactionKindRent TransactionKind = "rent"
	// TransactionKindDistribute moves coins from a merchant to a client.
	TransactionKindDistribute TransactionKind = "distribute"
	// TransactionKindReturn moves coins from a client back to its merchant.
	TransactionKindReturn TransactionKind = "return"
	// TransactionKindMint records an administrative supply increase.
	TransactionKindMint TransactionKind = "mint"
	// TransactionKindBurn records an administrative supply decrease.
	TransactionKindBurn TransactionKind = "burn"
)

// Transaction is one immutable entry in the append-only coin-movement log.
// The ID is assigned by the store and strictly increases in commit order.
// Exactly the references relevant to the kind are set: rent carries
// admin+merchant, distribute and return carry merchant+client, mint and
// burn carry admin only. Amount is always positive.
type Transaction struct {
	ID         int64           `json:"id"`
	AdminID    *uuid.UUID      `json:"admin_id,omitempty"`
	MerchantID *uuid.UUID      `json:"merchant_id,omitempty"`
	ClientID   *uuid.UUID      `json:"client_id,omitempty"`
	Kind       TransactionKind `json:"kind"`
	Amount     int64           `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ReferencesValid reports whether exactly the references relevant to the
// kind are populated.
func (t *Transaction) ReferencesValid() bool {
	switch t.Kind {
	case TransactionKindRent:
		return t.AdminID != nil && t.MerchantID != nil && t.ClientID == nil
	case TransactionKindDistribute, TransactionKindReturn:
		return t.AdminID == nil && t.MerchantID != nil && t.ClientID != nil
	case TransactionKindMint, TransactionKindBurn:
		return t.AdminID != nil && t.MerchantID == nil && t.ClientID == nil
	}
	return false
}

// AdminDelta returns the signed effect of this transaction on the admin
// balance: rent and burn are outflows, mint is an inflow.
func (t *Transaction) AdminDelta() int64 {
	switch t.Kind {
	case TransactionKindRent, TransactionKindBurn:
		return -t.Amount
	case TransactionKindMint:
		return t.Amount
	}
	return 0
}

// MerchantDelta returns the signed effect on the referenced merchant.
func (t *Transaction) MerchantDelta() int64 {
	switch t.Kind {
	case TransactionKindRent, TransactionKindReturn:
		return t.Amount
	case TransactionKindDistribute:
		return -t.Amount
	}
	return 0
}

// ClientDelta returns the signed effect on the referenced client.
func (t *Transaction) ClientDelta() int64 {
	switch t.Kind {
	case TransactionKindDistribute:
		return t.Amount
	case TransactionKindReturn:
		return -t.Amount
	}
	return 0
}
