package service

import (
	"context"
	"fmt"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WithdrawalServiceImpl implements ports.WithdrawalService.
//
// The withdrawal amount was debited from the user's commission balance when
// the request was filed, so completion only flips the status while rejection
// must refund the hold. Both run under the same row-lock discipline as fund
// settlement.
type WithdrawalServiceImpl struct {
	withdrawalRepo ports.WithdrawalRepository
	userRepo       ports.UserRepository
	auditSvc       ports.AuditService
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl.
func NewWithdrawalService(
	withdrawalRepo ports.WithdrawalRepository,
	userRepo ports.UserRepository,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		auditSvc:       auditSvc,
		transactor:     transactor,
		log:            log,
	}
}

// Settle transitions a pending withdrawal to completed or rejected.
func (s *WithdrawalServiceImpl) Settle(ctx context.Context, requestID uuid.UUID, target domain.WithdrawalStatus, actorEmail string) (*domain.WithdrawalRequest, error) {
	if target != domain.WithdrawalStatusCompleted && target != domain.WithdrawalStatusRejected {
		return nil, apperror.Validation(fmt.Sprintf("invalid withdrawal target: %q", target))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	req, err := s.withdrawalRepo.GetByIDForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("withdrawal request")
	}
	if req.IsTerminal() {
		return nil, apperror.ErrWithdrawalAlreadySettled()
	}

	// Rejection refunds the held commission balance.
	if target == domain.WithdrawalStatusRejected {
		user, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, req.UserID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
		}
		if user == nil {
			return nil, apperror.ErrNotFound("user")
		}
		refunded := user.CommissionBalance.Add(req.Amount)
		if err := s.userRepo.UpdateCommissionBalance(ctx, dbTx, user.ID, refunded); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("refund commission balance: %w", err))
		}
	}

	changed, err := s.withdrawalRepo.SetStatusIfPending(ctx, dbTx, req.ID, target)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update withdrawal status: %w", err))
	}
	if !changed {
		return nil, apperror.ErrWithdrawalAlreadySettled()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit: %w", err))
	}

	req.Status = target

	s.log.Info().
		Str("withdrawal_id", req.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("amount", req.Amount.String()).
		Str("status", string(target)).
		Msg("withdrawal settled")

	s.auditSvc.Log(ctx, newAuditLog(actorEmail, domain.AuditActionWithdrawalUpdate, map[string]interface{}{
		"withdrawal_id": req.ID.String(),
		"user_id":       req.UserID.String(),
		"amount":        req.Amount.String(),
		"status":        string(target),
	}))

	return req, nil
}
