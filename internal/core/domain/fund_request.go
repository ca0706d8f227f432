package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundRequestStatus is the lifecycle state of a manual fund request.
// A request leaves pending exactly once; completed and rejected are terminal.
type FundRequestStatus string

const (
	FundRequestStatusPending   FundRequestStatus = "pending"
	FundRequestStatusCompleted FundRequestStatus = "completed"
	FundRequestStatusRejected  FundRequestStatus = "rejected"
)

// FundRequest is a user's manual deposit request. Amount is already
// normalized to platform currency before it reaches the settlement engine.
type FundRequest struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Amount    decimal.Decimal   `json:"amount"`
	Method    string            `json:"method"`
	TrxID     string            `json:"trx_id"`
	Status    FundRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	SettledAt *time.Time        `json:"settled_at,omitempty"`
}

// NewFundRequest validates and creates a pending fund request.
func NewFundRequest(userID uuid.UUID, amount decimal.Decimal, method, trxID string) (*FundRequest, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("fund request amount must be positive, got %s", amount)
	}
	if method == "" {
		return nil, fmt.Errorf("fund request method is required")
	}
	return &FundRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		TrxID:     trxID,
		Status:    FundRequestStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsTerminal reports whether the request has been settled.
func (r *FundRequest) IsTerminal() bool {
	return r.Status == FundRequestStatusCompleted || r.Status == FundRequestStatusRejected
}

// ParseFundRequestStatus validates a status string against the closed enum.
func ParseFundRequestStatus(s string) (FundRequestStatus, error) {
	switch FundRequestStatus(s) {
	case FundRequestStatusPending, FundRequestStatusCompleted, FundRequestStatusRejected:
		return FundRequestStatus(s), nil
	}
	return "", fmt.Errorf("invalid fund request status: %q", s)
}
