package ports

import (
	"context"
	"time"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for panel users.
// Methods accepting pgx.Tx run inside transaction blocks with row locks.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	UpdateCommissionBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
	List(ctx context.Context) ([]domain.User, error)
}

// FundRequestRepository defines persistence for manual fund requests.
type FundRequestRepository interface {
	Create(ctx context.Context, req *domain.FundRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FundRequest, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FundRequest, error)
	ListPending(ctx context.Context) ([]domain.FundRequest, error)
	// SetStatusIfPending transitions pending -> status and reports whether a
	// row actually changed. False means another settlement won the race.
	SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.FundRequestStatus, settledAt time.Time) (bool, error)
}

// TransactionRepository defines persistence for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
	SumCompletedDeposits(ctx context.Context) (decimal.Decimal, error)
}

// CommissionRepository defines persistence for referral commission entries.
type CommissionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, c *domain.Commission) error
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]domain.Commission, error)
	Sum(ctx context.Context) (decimal.Decimal, error)
}

// WithdrawalRepository defines persistence for commission withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, req *domain.WithdrawalRequest) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error)
	ListPending(ctx context.Context) ([]domain.WithdrawalRequest, error)
	SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus) (bool, error)
}

// ProviderRepository defines persistence for SMM provider credentials.
type ProviderRepository interface {
	Create(ctx context.Context, p *domain.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	List(ctx context.Context) ([]domain.Provider, error)
}

// AdminRepository defines persistence for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// ServiceCatalogRepository exposes the service catalog margins used by
// profit estimation.
type ServiceCatalogRepository interface {
	// AverageMarginRatio returns avg((rate - cost) / rate) over the catalog,
	// zero when the catalog is empty.
	AverageMarginRatio(ctx context.Context) (decimal.Decimal, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
