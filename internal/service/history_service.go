package service

import (
	"context"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// HistoryServiceImpl implements ports.HistoryService: read access to the
// append-only audit log.
type HistoryServiceImpl struct {
	txRepo       ports.TransactionRepository
	merchantRepo ports.MerchantRepository
}

// NewHistoryService creates a new HistoryServiceImpl.
func NewHistoryService(txRepo ports.TransactionRepository, merchantRepo ports.MerchantRepository) *HistoryServiceImpl {
	return &HistoryServiceImpl{txRepo: txRepo, merchantRepo: merchantRepo}
}

// ListTransactions returns audit records in append order (oldest first),
// optionally filtered by account reference and kind.
func (s *HistoryServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	txns, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txns, nil
}

// MerchantStats aggregates movement totals for one merchant.
func (s *HistoryServiceImpl) MerchantStats(ctx context.Context, merchantID uuid.UUID) (*ports.MerchantStats, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, storeErr("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	stats, err := s.txRepo.MerchantStats(ctx, merchantID)
	if err != nil {
		return nil, storeErr("merchant stats", err)
	}
	return stats, nil
}
