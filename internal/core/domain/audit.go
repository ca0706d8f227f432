package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names an admin write action.
type AuditAction string

const (
	AuditActionLoginSuccess         AuditAction = "ADMIN_LOGIN_SUCCESS"
	AuditActionLoginFail            AuditAction = "ADMIN_LOGIN_FAIL"
	AuditActionFundRequestCompleted AuditAction = "FUND_REQUEST_COMPLETED"
	AuditActionFundRequestRejected  AuditAction = "FUND_REQUEST_REJECTED"
	AuditActionWithdrawalUpdate     AuditAction = "WITHDRAWAL_UPDATE"
	AuditActionBalanceManualUpdate  AuditAction = "BALANCE_MANUAL_UPDATE"
	AuditActionCommissionUpdate     AuditAction = "COMMISSION_MANUAL_UPDATE"
	AuditActionUserStatusChange     AuditAction = "USER_STATUS_CHANGE"
	AuditActionUserCreated          AuditAction = "USER_CREATED"
	AuditActionProviderCreated      AuditAction = "PROVIDER_CREATED"
)

// AuditLog is an append-only record of an admin action. Persistence is
// best-effort and never blocks the action it describes.
type AuditLog struct {
	ID         uuid.UUID   `json:"id"`
	ActorEmail string      `json:"actor_email"`
	Action     AuditAction `json:"action"`
	Details    string      `json:"details"` // JSON blob
	CreatedAt  time.Time   `json:"created_at"`
}
