package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryUserRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Balance = balance
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *inMemoryUserRepo) UpdateCommissionBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.CommissionBalance = balance
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *inMemoryUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *inMemoryUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, nil
}

// --- In-Memory Fund Request Repo ---

type inMemoryFundRequestRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]domain.FundRequest
}

func newInMemoryFundRequestRepo() *inMemoryFundRequestRepo {
	return &inMemoryFundRequestRepo{requests: make(map[uuid.UUID]domain.FundRequest)}
}

func (r *inMemoryFundRequestRepo) Create(ctx context.Context, req *domain.FundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = *req
	return nil
}

func (r *inMemoryFundRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *inMemoryFundRequestRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FundRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryFundRequestRepo) ListPending(ctx context.Context) ([]domain.FundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.FundRequest
	for _, req := range r.requests {
		if req.Status == domain.FundRequestStatusPending {
			result = append(result, req)
		}
	}
	return result, nil
}

func (r *inMemoryFundRequestRepo) SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.FundRequestStatus, settledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.FundRequestStatusPending {
		return false, nil
	}
	req.Status = status
	req.SettledAt = &settledAt
	r.requests[id] = req
	return true, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	entries []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *txn)
	return nil
}

func (r *inMemoryTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.entries {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) SumCompletedDeposits(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range r.entries {
		if t.Type == domain.TransactionTypeManualDeposit && t.Status == domain.TransactionStatusCompleted {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

// --- In-Memory Commission Repo ---

type inMemoryCommissionRepo struct {
	mu      sync.RWMutex
	entries []domain.Commission
}

func newInMemoryCommissionRepo() *inMemoryCommissionRepo {
	return &inMemoryCommissionRepo{}
}

func (r *inMemoryCommissionRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Commission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *c)
	return nil
}

func (r *inMemoryCommissionRepo) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]domain.Commission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Commission
	for _, c := range r.entries {
		if c.ReferrerID == referrerID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *inMemoryCommissionRepo) Sum(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, c := range r.entries {
		sum = sum.Add(c.Amount)
	}
	return sum, nil
}

// --- In-Memory Withdrawal Repo ---

type inMemoryWithdrawalRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]domain.WithdrawalRequest
}

func newInMemoryWithdrawalRepo() *inMemoryWithdrawalRepo {
	return &inMemoryWithdrawalRepo{requests: make(map[uuid.UUID]domain.WithdrawalRequest)}
}

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, req *domain.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = *req
	return nil
}

func (r *inMemoryWithdrawalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *inMemoryWithdrawalRepo) ListPending(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WithdrawalRequest
	for _, req := range r.requests {
		if req.Status == domain.WithdrawalStatusPending {
			result = append(result, req)
		}
	}
	return result, nil
}

func (r *inMemoryWithdrawalRepo) SetStatusIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.WithdrawalStatusPending {
		return false, nil
	}
	req.Status = status
	r.requests[id] = req
	return true, nil
}

// --- In-Memory Provider Repo ---

type inMemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[uuid.UUID]domain.Provider
}

func newInMemoryProviderRepo() *inMemoryProviderRepo {
	return &inMemoryProviderRepo{providers: make(map[uuid.UUID]domain.Provider)}
}

func (r *inMemoryProviderRepo) Create(ctx context.Context, p *domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = *p
	return nil
}

func (r *inMemoryProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryProviderRepo) List(ctx context.Context) ([]domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result, nil
}

// --- In-Memory Admin Repo ---

type inMemoryAdminRepo struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

func newInMemoryAdminRepo() *inMemoryAdminRepo {
	return &inMemoryAdminRepo{admins: make(map[string]domain.Admin)}
}

func (r *inMemoryAdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[a.Email]; ok {
		return fmt.Errorf("email already exists")
	}
	r.admins[a.Email] = *a
	return nil
}

func (r *inMemoryAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryAuditRepo) list() []domain.AuditLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.AuditLog(nil), r.entries...)
}

// --- In-Memory Service Catalog Repo ---

type inMemoryCatalogRepo struct {
	margin decimal.Decimal
}

func newInMemoryCatalogRepo(margin string) *inMemoryCatalogRepo {
	return &inMemoryCatalogRepo{margin: decimal.RequireFromString(margin)}
}

func (r *inMemoryCatalogRepo) AverageMarginRatio(ctx context.Context) (decimal.Decimal, error) {
	return r.margin, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor hands out one transaction at a time, standing in for
// the row locks a real database takes under SELECT FOR UPDATE. A settlement
// racing another settlement blocks in Begin until the winner commits, then
// observes the terminal status exactly as it would against PostgreSQL.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx is a no-op pgx.Tx that holds the transactor lock until the first
// Commit or Rollback.
type serialTx struct {
	once    sync.Once
	release *sync.Mutex
}

func (t *serialTx) Commit(ctx context.Context) error {
	t.once.Do(t.release.Unlock)
	return nil
}

func (t *serialTx) Rollback(ctx context.Context) error {
	t.once.Do(t.release.Unlock)
	return nil
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
