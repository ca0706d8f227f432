package service

import (
	"context"
	"testing"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports/mocks"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupProviderService(t *testing.T) (*ProviderServiceImpl, *mocks.MockProviderRepository, *mocks.MockEncryptionService, *mocks.MockAuditService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProviderRepository(ctrl)
	encSvc := mocks.NewMockEncryptionService(ctrl)
	auditSvc := mocks.NewMockAuditService(ctrl)
	svc := NewProviderService(repo, encSvc, auditSvc, zerolog.Nop())
	return svc, repo, encSvc, auditSvc, ctrl
}

func TestProviderService_Create_EncryptsKey(t *testing.T) {
	svc, repo, encSvc, auditSvc, ctrl := setupProviderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	encSvc.EXPECT().Encrypt("plain-key").Return("enc-key", nil)
	repo.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Provider) error {
			assert.Equal(t, "enc-key", p.APIKeyEnc)
			assert.Equal(t, "BoostPanel", p.Name)
			return nil
		})
	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any())

	p, err := svc.Create(ctx, "BoostPanel", "https://boost.example.com/api/v2", "plain-key")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestProviderService_Create_Validation(t *testing.T) {
	svc, _, _, _, ctrl := setupProviderService(t)
	defer ctrl.Finish()

	_, err := svc.Create(context.Background(), "", "", "")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "VAL_001", appErr.Code)

	_, err = svc.Create(context.Background(), "X", "ftp://nope", "k")
	require.Error(t, err)
}
