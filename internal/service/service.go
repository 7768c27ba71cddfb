// Package service implements the ledger core: account registry, transfer
// engine and audit history over the ports defined in internal/core/ports.
package service

import (
	"errors"
	"fmt"

	"coin-ledger/pkg/apperror"
)

// Roster cache keys shared by the registry (reads) and the transfer
// engine (invalidation after committed balance changes).
const (
	cacheKeyMerchants = "merchants"
	cacheKeyClients   = "clients"
)

// storeErr passes structured ledger errors through unchanged and wraps
// anything else as a store failure.
func storeErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.ErrStoreUnavailable(fmt.Errorf("%s: %w", op, err))
}
