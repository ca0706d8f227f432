package postgres

import (
	"context"
	"errors"
	"fmt"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

const withdrawalColumns = `id, user_id, amount::text, method_name, method_details, status, created_at`

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	w := &domain.WithdrawalRequest{}
	var amount string
	if err := row.Scan(&w.ID, &w.UserID, &amount, &w.MethodName, &w.MethodDetails, &w.Status, &w.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if w.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return w, nil
}

// Create inserts a new pending withdrawal request.
func (r *WithdrawalRepo) Create(ctx context.Context, w *domain.WithdrawalRequest) error {
	query := `INSERT INTO withdrawal_requests (id, user_id, amount, method_name, method_details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Amount.String(), w.MethodName, w.MethodDetails, w.Status, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal request: %w", err)
	}
	return nil
}

// GetByIDForUpdate fetches a withdrawal with a pessimistic row lock.
// This MUST be called within a transaction.
func (r *WithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`

	w, err := scanWithdrawal(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal for update: %w", err)
	}
	return w, nil
}

// ListPending returns all pending withdrawal requests, newest first.
func (r *WithdrawalRepo) ListPending(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, domain.WithdrawalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		requests = append(requests, *w)
	}
	return requests, rows.Err()
}

// SetStatusIfPending flips the withdrawal into a terminal status, guarded
// by the pending precondition.
func (r *WithdrawalRepo) SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus) (bool, error) {
	query := `UPDATE withdrawal_requests SET status = $1 WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, status, id, domain.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("update withdrawal status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
