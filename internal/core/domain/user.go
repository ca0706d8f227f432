package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserStatus is the lifecycle state of a panel user.
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User is a panel customer managed by the admin back-office. Balances are
// platform currency; CommissionBalance is the referral reward pool.
type User struct {
	ID                uuid.UUID       `json:"id"`
	Email             string          `json:"email"`
	Name              string          `json:"name"`
	Balance           decimal.Decimal `json:"balance"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	CommissionBalance decimal.Decimal `json:"commission_balance"`
	ReferredBy        *uuid.UUID      `json:"referred_by,omitempty"`
	Status            UserStatus      `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewUser creates an active user with zeroed balances.
func NewUser(email, name string, referredBy *uuid.UUID) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %q", email)
	}
	now := time.Now().UTC()
	return &User{
		ID:                uuid.New(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		Balance:           decimal.Zero,
		TotalSpent:        decimal.Zero,
		CommissionBalance: decimal.Zero,
		ReferredBy:        referredBy,
		Status:            UserStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsActive reports whether the user may transact.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// ParseUserStatus validates a status string against the closed enum.
func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserStatusActive, UserStatusBlocked:
		return UserStatus(s), nil
	}
	return "", fmt.Errorf("invalid user status: %q", s)
}
