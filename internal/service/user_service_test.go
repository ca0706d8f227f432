package service

import (
	"context"
	"testing"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/internal/core/ports/mocks"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type userTestDeps struct {
	svc        *UserServiceImpl
	userRepo   *mocks.MockUserRepository
	txRepo     *mocks.MockTransactionRepository
	auditSvc   *mocks.MockAuditService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupUserService(t *testing.T) *userTestDeps {
	ctrl := gomock.NewController(t)
	d := &userTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		auditSvc:   mocks.NewMockAuditService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewUserService(d.userRepo, d.txRepo, d.auditSvc, d.transactor, "PKR", zerolog.Nop())
	return d
}

func TestUserService_Create_Success(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "new@example.com").Return(nil, nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	user, err := d.svc.Create(ctx, ports.CreateUserRequest{Email: "New@Example.com", Name: "  Ali  "})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Ali", user.Name)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.True(t, user.Balance.IsZero())
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByEmail(ctx, "dup@example.com").Return(&domain.User{ID: uuid.New()}, nil)

	_, err := d.svc.Create(ctx, ports.CreateUserRequest{Email: "dup@example.com"})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestUserService_Create_UnknownReferrer(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	refID := uuid.New()
	d.userRepo.EXPECT().GetByEmail(ctx, "new@example.com").Return(nil, nil)
	d.userRepo.EXPECT().GetByID(ctx, refID).Return(nil, nil)

	_, err := d.svc.Create(ctx, ports.CreateUserRequest{Email: "new@example.com", ReferredBy: &refID})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestUserService_AdjustBalance_CreditWritesLedger(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	user := &domain.User{ID: uuid.New(), Balance: decimal.RequireFromString("100.00"), Status: domain.UserStatusActive}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.userRepo.EXPECT().GetByIDForUpdate(ctx, tx, user.ID).Return(user, nil)
	d.userRepo.EXPECT().UpdateBalance(ctx, tx, user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.RequireFromString("150.00")))
			return nil
		})
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeManualAdjustment, txn.Type)
			assert.Equal(t, "admin", txn.Gateway)
			assert.Nil(t, txn.FundRequestID)
			return nil
		})
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	result, err := d.svc.AdjustBalance(ctx, user.ID, decimal.RequireFromString("50.00"), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(decimal.RequireFromString("150.00")))
}

func TestUserService_AdjustBalance_RejectsOverdraft(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	user := &domain.User{ID: uuid.New(), Balance: decimal.RequireFromString("30.00"), Status: domain.UserStatusActive}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.userRepo.EXPECT().GetByIDForUpdate(ctx, tx, user.ID).Return(user, nil)

	_, err := d.svc.AdjustBalance(ctx, user.ID, decimal.RequireFromString("-50.00"), "admin@example.com")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestUserService_AdjustBalance_ZeroDelta(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.AdjustBalance(context.Background(), uuid.New(), decimal.Zero, "admin@example.com")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_003", appErr.Code)
}

func TestUserService_SetStatus(t *testing.T) {
	d := setupUserService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.userRepo.EXPECT().UpdateStatus(ctx, id, domain.UserStatusBlocked).Return(nil)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	require.NoError(t, d.svc.SetStatus(ctx, id, domain.UserStatusBlocked))

	err := d.svc.SetStatus(ctx, id, domain.UserStatus("banned"))
	require.Error(t, err)
}
