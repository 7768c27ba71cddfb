package postgres

import (
	"context"
	"fmt"
	"strings"

	"coin-ledger/internal/core/domain"
	"coin-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends an audit record within a database transaction. The
// store assigns the strictly increasing ID and the commit-time timestamp,
// both written back into txn.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	query := `INSERT INTO transactions (admin_id, merchant_id, client_id, kind, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		txn.AdminID, txn.MerchantID, txn.ClientID, txn.Kind, txn.Amount,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// List returns audit records in append order (id ascending), optionally
// filtered by account reference and kind.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.AdminID != nil {
		conditions = append(conditions, fmt.Sprintf("admin_id = $%d", argIdx))
		args = append(args, *params.AdminID)
		argIdx++
	}
	if params.MerchantID != nil {
		conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
		args = append(args, *params.MerchantID)
		argIdx++
	}
	if params.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, *params.ClientID)
		argIdx++
	}
	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT id, admin_id, merchant_id, client_id, kind, amount, created_at
		FROM transactions %s ORDER BY id`, where)
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(&t.ID, &t.AdminID, &t.MerchantID, &t.ClientID, &t.Kind, &t.Amount, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// MerchantStats aggregates movement totals for one merchant.
func (r *TransactionRepo) MerchantStats(ctx context.Context, merchantID uuid.UUID) (*ports.MerchantStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(amount) FILTER (WHERE kind = 'rent'), 0) AS rented,
		COALESCE(SUM(amount) FILTER (WHERE kind = 'distribute'), 0) AS distributed,
		COALESCE(SUM(amount) FILTER (WHERE kind = 'return'), 0) AS returned
		FROM transactions WHERE merchant_id = $1`

	stats := &ports.MerchantStats{}
	err := r.pool.QueryRow(ctx, query, merchantID).Scan(
		&stats.TotalTransactions, &stats.TotalRented, &stats.TotalDistributed, &stats.TotalReturned,
	)
	if err != nil {
		return nil, fmt.Errorf("merchant stats: %w", err)
	}
	return stats, nil
}
