package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commission is an append-only referral reward entry on the referrer.
// Each entry references exactly one fund request and the referred user
// whose approved deposit produced it.
type Commission struct {
	ID            uuid.UUID       `json:"id"`
	ReferrerID    uuid.UUID       `json:"referrer_id"`
	Amount        decimal.Decimal `json:"amount"`
	FromUserID    uuid.UUID       `json:"from_user_id"`
	FundRequestID uuid.UUID       `json:"fund_request_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
