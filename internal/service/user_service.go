package service

import (
	"context"
	"fmt"
	"time"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo   ports.UserRepository
	txRepo     ports.TransactionRepository
	auditSvc   ports.AuditService
	transactor ports.DBTransactor
	currency   string
	log        zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	currency string,
	log zerolog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo:   userRepo,
		txRepo:     txRepo,
		auditSvc:   auditSvc,
		transactor: transactor,
		currency:   currency,
		log:        log,
	}
}

// Create registers a new panel user.
func (s *UserServiceImpl) Create(ctx context.Context, req ports.CreateUserRequest) (*domain.User, error) {
	user, err := domain.NewUser(req.Email, req.Name, req.ReferredBy)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing user: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation(fmt.Sprintf("user with email %s already exists", user.Email))
	}

	if req.ReferredBy != nil {
		referrer, err := s.userRepo.GetByID(ctx, *req.ReferredBy)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check referrer: %w", err))
		}
		if referrer == nil {
			return nil, apperror.Validation("referrer not found")
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.auditSvc.Log(ctx, newAuditLog("", domain.AuditActionUserCreated, map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	}))

	return user, nil
}

// AdjustBalance applies a signed manual delta to a user's balance and
// records it as a ledger adjustment. The whole movement is transactional.
func (s *UserServiceImpl) AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, actorEmail string) (*domain.User, error) {
	if delta.IsZero() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	newBalance := user.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, apperror.Validation("adjustment would make balance negative")
	}

	if err := s.userRepo.UpdateBalance(ctx, dbTx, user.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    user.ID,
		Type:      domain.TransactionTypeManualAdjustment,
		Amount:    delta,
		Currency:  s.currency,
		Gateway:   "admin",
		Status:    domain.TransactionStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit: %w", err))
	}

	user.Balance = newBalance

	s.auditSvc.Log(ctx, newAuditLog(actorEmail, domain.AuditActionBalanceManualUpdate, map[string]interface{}{
		"user_id":     user.ID.String(),
		"delta":       delta.String(),
		"new_balance": newBalance.String(),
	}))

	return user, nil
}

// SetCommissionBalance overwrites a user's commission balance.
func (s *UserServiceImpl) SetCommissionBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.User, error) {
	if amount.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	if err := s.userRepo.UpdateCommissionBalance(ctx, dbTx, user.ID, amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update commission balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit: %w", err))
	}

	user.CommissionBalance = amount

	s.auditSvc.Log(ctx, newAuditLog("", domain.AuditActionCommissionUpdate, map[string]interface{}{
		"user_id": user.ID.String(),
		"amount":  amount.String(),
	}))

	return user, nil
}

// SetStatus blocks or unblocks a user.
func (s *UserServiceImpl) SetStatus(ctx context.Context, userID uuid.UUID, status domain.UserStatus) error {
	if _, err := domain.ParseUserStatus(string(status)); err != nil {
		return apperror.Validation(err.Error())
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return apperror.InternalError(fmt.Errorf("update user status: %w", err))
	}

	s.auditSvc.Log(ctx, newAuditLog("", domain.AuditActionUserStatusChange, map[string]interface{}{
		"user_id": userID.String(),
		"status":  string(status),
	}))

	return nil
}
