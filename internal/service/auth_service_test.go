package service

import (
	"context"
	"testing"
	"time"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports/mocks"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc       *AuthServiceImpl
	adminRepo *mocks.MockAdminRepository
	hashSvc   *mocks.MockHashService
	tokenSvc  *mocks.MockTokenService
	policy    *mocks.MockAdminPolicy
	auditSvc  *mocks.MockAuditService
	ctrl      *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		adminRepo: mocks.NewMockAdminRepository(ctrl),
		hashSvc:   mocks.NewMockHashService(ctrl),
		tokenSvc:  mocks.NewMockTokenService(ctrl),
		policy:    mocks.NewMockAdminPolicy(ctrl),
		auditSvc:  mocks.NewMockAuditService(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewAuthService(d.adminRepo, d.hashSvc, d.tokenSvc, d.policy, d.auditSvc, zerolog.Nop())
	return d
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	admin := &domain.Admin{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: "$argon2id$hashed",
	}
	expiry := time.Now().Add(24 * time.Hour)

	d.policy.EXPECT().IsAdmin(admin.Email).Return(true)
	d.adminRepo.EXPECT().GetByEmail(ctx, admin.Email).Return(admin, nil)
	d.hashSvc.EXPECT().Verify("correct-horse", admin.PasswordHash).Return(true, nil)
	d.tokenSvc.EXPECT().Generate(admin.ID, admin.Email).Return("signed.jwt.token", expiry, nil)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, entry *domain.AuditLog) {
			assert.Equal(t, domain.AuditActionLoginSuccess, entry.Action)
		})

	token, expiresAt, err := d.svc.Login(ctx, admin.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)
	assert.Equal(t, expiry, expiresAt)
}

func TestAuthService_Login_NonAdminEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.policy.EXPECT().IsAdmin("user@example.com").Return(false)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, entry *domain.AuditLog) {
			assert.Equal(t, domain.AuditActionLoginFail, entry.Action)
		})

	_, _, err := d.svc.Login(ctx, "user@example.com", "whatever")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_003", appErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	admin := &domain.Admin{ID: uuid.New(), Email: "admin@example.com", PasswordHash: "$argon2id$hashed"}

	d.policy.EXPECT().IsAdmin(admin.Email).Return(true)
	d.adminRepo.EXPECT().GetByEmail(ctx, admin.Email).Return(admin, nil)
	d.hashSvc.EXPECT().Verify("wrong", admin.PasswordHash).Return(false, nil)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	_, _, err := d.svc.Login(ctx, admin.Email, "wrong")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_003", appErr.Code)
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.policy.EXPECT().IsAdmin("admin@example.com").Return(true)
	d.adminRepo.EXPECT().GetByEmail(ctx, "admin@example.com").Return(nil, nil)
	d.auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	_, _, err := d.svc.Login(ctx, "admin@example.com", "pw")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "AUTH_003", appErr.Code)
}

func TestAuthService_Login_MissingInput(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, _, err := d.svc.Login(context.Background(), "", "")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestEmailAdminPolicy(t *testing.T) {
	p := NewEmailAdminPolicy("admin@example.com")
	assert.True(t, p.IsAdmin("admin@example.com"))
	assert.False(t, p.IsAdmin("Admin@Example.com"))
	assert.False(t, p.IsAdmin("someone@example.com"))
	assert.False(t, NewEmailAdminPolicy("").IsAdmin(""))
}
