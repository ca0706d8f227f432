package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeManualDeposit    TransactionType = "manual_deposit"
	TransactionTypeManualAdjustment TransactionType = "manual_adjustment"
)

// TransactionStatus represents the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is an immutable ledger entry. Entries are only ever appended,
// as a side effect of a completed fund request or a manual adjustment.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Gateway       string            `json:"gateway"`
	GatewayTrxID  string            `json:"gateway_trx_id"`
	FundRequestID *uuid.UUID        `json:"fund_request_id,omitempty"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}
