package service

import (
	"context"
	"fmt"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	userRepo       ports.UserRepository
	txRepo         ports.TransactionRepository
	commissionRepo ports.CommissionRepository
	catalogRepo    ports.ServiceCatalogRepository
	log            zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	commissionRepo ports.CommissionRepository,
	catalogRepo ports.ServiceCatalogRepository,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		userRepo:       userRepo,
		txRepo:         txRepo,
		commissionRepo: commissionRepo,
		catalogRepo:    catalogRepo,
		log:            log,
	}
}

// GetDashboardStats aggregates the back-office headline numbers.
// Revenue is the sum of completed manual deposits; estimated profit applies
// the catalog-wide average margin to revenue and subtracts commission paid.
func (s *ReportingServiceImpl) GetDashboardStats(ctx context.Context) (*ports.DashboardStats, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}

	var active int64
	for i := range users {
		if users[i].Status == domain.UserStatusActive {
			active++
		}
	}

	revenue, err := s.txRepo.SumCompletedDeposits(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum deposits: %w", err))
	}

	commissionPaid, err := s.commissionRepo.Sum(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum commissions: %w", err))
	}

	margin, err := s.catalogRepo.AverageMarginRatio(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("average margin: %w", err))
	}

	profit := revenue.Mul(margin).Sub(commissionPaid).Round(domain.BalancePlaces)

	return &ports.DashboardStats{
		TotalUsers:          int64(len(users)),
		ActiveUsers:         active,
		TotalRevenue:        revenue,
		TotalCommissionPaid: commissionPaid,
		EstimatedProfit:     profit,
	}, nil
}
