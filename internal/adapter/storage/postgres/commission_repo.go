package postgres

import (
	"context"
	"fmt"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CommissionRepo implements ports.CommissionRepository. Append-only.
type CommissionRepo struct {
	pool Pool
}

// NewCommissionRepo creates a new CommissionRepo.
func NewCommissionRepo(pool Pool) *CommissionRepo {
	return &CommissionRepo{pool: pool}
}

const commissionColumns = `id, referrer_id, amount::text, from_user_id, fund_request_id, created_at`

func scanCommission(row pgx.Row) (*domain.Commission, error) {
	c := &domain.Commission{}
	var amount string
	if err := row.Scan(&c.ID, &c.ReferrerID, &amount, &c.FromUserID, &c.FundRequestID, &c.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return c, nil
}

// Create appends a commission entry within a transaction.
func (r *CommissionRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Commission) error {
	query := `INSERT INTO commissions (id, referrer_id, amount, from_user_id, fund_request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.ReferrerID, c.Amount.String(), c.FromUserID, c.FundRequestID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

// ListByReferrer returns commission entries earned by a referrer.
func (r *CommissionRepo) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]domain.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE referrer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()

	var entries []domain.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		entries = append(entries, *c)
	}
	return entries, rows.Err()
}

// Sum returns the total commission ever credited.
func (r *CommissionRepo) Sum(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0)::text FROM commissions`

	var sum string
	if err := r.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum commissions: %w", err)
	}
	d, err := decimal.NewFromString(sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse commission sum: %w", err)
	}
	return d, nil
}
