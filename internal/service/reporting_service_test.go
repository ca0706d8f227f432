package service

import (
	"context"
	"testing"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReportingService_GetDashboardStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	commissionRepo := mocks.NewMockCommissionRepository(ctrl)
	catalogRepo := mocks.NewMockServiceCatalogRepository(ctrl)

	svc := NewReportingService(userRepo, txRepo, commissionRepo, catalogRepo, zerolog.Nop())
	ctx := context.Background()

	userRepo.EXPECT().List(ctx).Return([]domain.User{
		{ID: uuid.New(), Status: domain.UserStatusActive},
		{ID: uuid.New(), Status: domain.UserStatusActive},
		{ID: uuid.New(), Status: domain.UserStatusBlocked},
	}, nil)
	txRepo.EXPECT().SumCompletedDeposits(ctx).Return(decimal.RequireFromString("10000.00"), nil)
	commissionRepo.EXPECT().Sum(ctx).Return(decimal.RequireFromString("500.00"), nil)
	catalogRepo.EXPECT().AverageMarginRatio(ctx).Return(decimal.RequireFromString("0.30"), nil)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("10000.00")))
	assert.True(t, stats.TotalCommissionPaid.Equal(decimal.RequireFromString("500.00")))
	// 10000 * 0.30 - 500 = 2500
	assert.True(t, stats.EstimatedProfit.Equal(decimal.RequireFromString("2500.00")), "got %s", stats.EstimatedProfit)
}

func TestReportingService_GetDashboardStats_EmptyPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	commissionRepo := mocks.NewMockCommissionRepository(ctrl)
	catalogRepo := mocks.NewMockServiceCatalogRepository(ctrl)

	svc := NewReportingService(userRepo, txRepo, commissionRepo, catalogRepo, zerolog.Nop())
	ctx := context.Background()

	userRepo.EXPECT().List(ctx).Return(nil, nil)
	txRepo.EXPECT().SumCompletedDeposits(ctx).Return(decimal.Zero, nil)
	commissionRepo.EXPECT().Sum(ctx).Return(decimal.Zero, nil)
	catalogRepo.EXPECT().AverageMarginRatio(ctx).Return(decimal.Zero, nil)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalUsers)
	assert.True(t, stats.EstimatedProfit.IsZero())
}
