package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// FundRequestRepo implements ports.FundRequestRepository.
type FundRequestRepo struct {
	pool Pool
}

// NewFundRequestRepo creates a new FundRequestRepo.
func NewFundRequestRepo(pool Pool) *FundRequestRepo {
	return &FundRequestRepo{pool: pool}
}

const fundRequestColumns = `id, user_id, amount::text, method, trx_id, status, created_at, settled_at`

func scanFundRequest(row pgx.Row) (*domain.FundRequest, error) {
	fr := &domain.FundRequest{}
	var amount string
	if err := row.Scan(
		&fr.ID, &fr.UserID, &amount, &fr.Method, &fr.TrxID,
		&fr.Status, &fr.CreatedAt, &fr.SettledAt,
	); err != nil {
		return nil, err
	}
	var err error
	if fr.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return fr, nil
}

// Create inserts a new pending fund request.
func (r *FundRequestRepo) Create(ctx context.Context, fr *domain.FundRequest) error {
	query := `INSERT INTO fund_requests (id, user_id, amount, method, trx_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		fr.ID, fr.UserID, fr.Amount.String(), fr.Method, fr.TrxID, fr.Status, fr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fund request: %w", err)
	}
	return nil
}

// GetByID fetches a fund request without locking.
func (r *FundRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FundRequest, error) {
	query := `SELECT ` + fundRequestColumns + ` FROM fund_requests WHERE id = $1`

	fr, err := scanFundRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fund request: %w", err)
	}
	return fr, nil
}

// GetByIDForUpdate fetches a fund request with a pessimistic row lock.
// This MUST be called within a transaction; it serializes concurrent
// settlement attempts on the same request.
func (r *FundRequestRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FundRequest, error) {
	query := `SELECT ` + fundRequestColumns + ` FROM fund_requests WHERE id = $1 FOR UPDATE`

	fr, err := scanFundRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fund request for update: %w", err)
	}
	return fr, nil
}

// ListPending returns all pending fund requests, newest first.
func (r *FundRequestRepo) ListPending(ctx context.Context) ([]domain.FundRequest, error) {
	query := `SELECT ` + fundRequestColumns + ` FROM fund_requests WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, domain.FundRequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending fund requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.FundRequest
	for rows.Next() {
		fr, err := scanFundRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fund request: %w", err)
		}
		requests = append(requests, *fr)
	}
	return requests, rows.Err()
}

// SetStatusIfPending flips the request into a terminal status, guarded by
// the pending precondition. Returns false when no row transitioned, i.e.
// the request was already settled by a concurrent attempt.
func (r *FundRequestRepo) SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.FundRequestStatus, settledAt time.Time) (bool, error) {
	query := `UPDATE fund_requests SET status = $1, settled_at = $2 WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, status, settledAt, id, domain.FundRequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("update fund request status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
