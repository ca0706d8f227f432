package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SettlementServiceImpl implements ports.SettlementService.
//
// Approval is an all-or-nothing unit: balance credit, ledger entry, referral
// commission, and the status flip commit together or not at all. Concurrent
// settlements of the same request are serialized by a row lock; the loser of
// the race gets a conflict error, never a second credit.
type SettlementServiceImpl struct {
	fundRepo       ports.FundRequestRepository
	userRepo       ports.UserRepository
	txRepo         ports.TransactionRepository
	commissionRepo ports.CommissionRepository
	auditSvc       ports.AuditService
	transactor     ports.DBTransactor
	commissionRate decimal.Decimal
	currency       string
	log            zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	fundRepo ports.FundRequestRepository,
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	commissionRepo ports.CommissionRepository,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	commissionRate float64,
	currency string,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		fundRepo:       fundRepo,
		userRepo:       userRepo,
		txRepo:         txRepo,
		commissionRepo: commissionRepo,
		auditSvc:       auditSvc,
		transactor:     transactor,
		commissionRate: decimal.NewFromFloat(commissionRate),
		currency:       currency,
		log:            log,
	}
}

// Settle transitions a pending fund request to completed or rejected.
func (s *SettlementServiceImpl) Settle(ctx context.Context, req ports.SettleFundRequest) (*domain.FundRequest, error) {
	if req.Target != domain.FundRequestStatusCompleted && req.Target != domain.FundRequestStatusRejected {
		return nil, apperror.Validation(fmt.Sprintf("invalid settlement target: %q", req.Target))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get fund request
	fundReq, err := s.fundRepo.GetByIDForUpdate(ctx, dbTx, req.RequestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock fund request: %w", err))
	}
	if fundReq == nil {
		return nil, apperror.ErrNotFound("fund request")
	}
	if fundReq.IsTerminal() {
		return nil, apperror.ErrRequestAlreadySettled()
	}

	if req.Target == domain.FundRequestStatusCompleted {
		if err := s.applyCredit(ctx, dbTx, fundReq); err != nil {
			return nil, err
		}
	}

	settledAt := time.Now().UTC()
	changed, err := s.fundRepo.SetStatusIfPending(ctx, dbTx, fundReq.ID, req.Target, settledAt)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update fund request status: %w", err))
	}
	if !changed {
		return nil, apperror.ErrRequestAlreadySettled()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("commit: %w", err))
	}

	fundReq.Status = req.Target
	fundReq.SettledAt = &settledAt

	s.log.Info().
		Str("fund_request_id", fundReq.ID.String()).
		Str("user_id", fundReq.UserID.String()).
		Str("amount", fundReq.Amount.String()).
		Str("status", string(req.Target)).
		Msg("fund request settled")

	action := domain.AuditActionFundRequestCompleted
	if req.Target == domain.FundRequestStatusRejected {
		action = domain.AuditActionFundRequestRejected
	}
	s.auditSvc.Log(ctx, newAuditLog(req.ActorEmail, action, map[string]interface{}{
		"fund_request_id": fundReq.ID.String(),
		"user_id":         fundReq.UserID.String(),
		"amount":          fundReq.Amount.String(),
	}))

	return fundReq, nil
}

// applyCredit performs the money movement of an approval inside dbTx:
// balance credit, ledger entry, and referral commission.
func (s *SettlementServiceImpl) applyCredit(ctx context.Context, dbTx pgx.Tx, fundReq *domain.FundRequest) error {
	user, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, fundReq.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	newBalance := user.Balance.Add(fundReq.Amount)
	if err := s.userRepo.UpdateBalance(ctx, dbTx, user.ID, newBalance); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	reqID := fundReq.ID
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        user.ID,
		Type:          domain.TransactionTypeManualDeposit,
		Amount:        fundReq.Amount,
		Currency:      s.currency,
		Gateway:       fundReq.Method,
		GatewayTrxID:  fundReq.TrxID,
		FundRequestID: &reqID,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if user.ReferredBy == nil || s.commissionRate.IsZero() {
		return nil
	}

	commissionAmount := fundReq.Amount.Mul(s.commissionRate).Round(domain.BalancePlaces)
	if commissionAmount.IsZero() {
		return nil
	}

	referrer, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, *user.ReferredBy)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock referrer: %w", err))
	}
	if referrer == nil {
		// Dangling referral pointer. The deposit itself must still settle.
		s.log.Warn().
			Str("user_id", user.ID.String()).
			Str("referrer_id", user.ReferredBy.String()).
			Msg("referrer not found, skipping commission")
		return nil
	}

	newCommissionBalance := referrer.CommissionBalance.Add(commissionAmount)
	if err := s.userRepo.UpdateCommissionBalance(ctx, dbTx, referrer.ID, newCommissionBalance); err != nil {
		return apperror.InternalError(fmt.Errorf("update commission balance: %w", err))
	}

	commission := &domain.Commission{
		ID:            uuid.New(),
		ReferrerID:    referrer.ID,
		Amount:        commissionAmount,
		FromUserID:    user.ID,
		FundRequestID: fundReq.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.commissionRepo.Create(ctx, dbTx, commission); err != nil {
		return apperror.InternalError(fmt.Errorf("create commission entry: %w", err))
	}

	return nil
}

// newAuditLog builds an audit entry with marshaled details.
func newAuditLog(actorEmail string, action domain.AuditAction, details map[string]interface{}) *domain.AuditLog {
	blob, err := json.Marshal(details)
	if err != nil {
		blob = []byte("{}")
	}
	return &domain.AuditLog{
		ID:         uuid.New(),
		ActorEmail: actorEmail,
		Action:     action,
		Details:    string(blob),
		CreatedAt:  time.Now().UTC(),
	}
}
