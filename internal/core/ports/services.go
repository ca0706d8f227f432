package ports

import (
	"context"
	"time"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminPolicy decides whether a resolved identity may act as admin.
// The default implementation is a single-principal email check; swapping it
// for a role-based policy must not touch the core services.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// EncryptionService handles AES-256-GCM encryption of provider API keys.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(adminID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AdminID uuid.UUID
	Email   string
}

// RateOrigin tags where an exchange rate came from.
type RateOrigin string

const (
	RateOriginLive     RateOrigin = "live"
	RateOriginCached   RateOrigin = "cached"
	RateOriginFallback RateOrigin = "fallback"
)

// ExchangeRateSource resolves the USD -> platform currency rate. It never
// fails: any fetch problem degrades to the configured fallback constant.
type ExchangeRateSource interface {
	Rate(ctx context.Context) (decimal.Decimal, RateOrigin)
}

// RateCache stores fetched exchange rates with a bounded TTL.
type RateCache interface {
	Get(ctx context.Context, currency string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, currency string, rate decimal.Decimal, ttl time.Duration) error
}

// ProviderClient performs the single-attempt upstream call to an SMM
// provider API. Implementations must bound the request with a timeout.
type ProviderClient interface {
	Do(ctx context.Context, apiURL, apiKey, action string, params map[string]string) ([]byte, error)
}

// --- Service Ports (Business Logic) ---

// ForwardRequest is a validated provider proxy invocation. Either
// ProviderID (stored credentials) or APIURL+APIKey must be set; ProviderID
// wins when both are present.
type ForwardRequest struct {
	ProviderID *uuid.UUID
	APIURL     string
	APIKey     string
	Action     string
	Params     map[string]string
}

// ProxyService forwards provider API calls and normalizes monetary fields
// into platform currency.
type ProxyService interface {
	Forward(ctx context.Context, req ForwardRequest) (interface{}, error)
}

// SettleFundRequest is a validated settlement command.
type SettleFundRequest struct {
	RequestID  uuid.UUID
	Target     domain.FundRequestStatus // completed or rejected
	ActorEmail string
}

// SettlementService transitions a fund request to a terminal state,
// maintaining balance, ledger, and commission invariants atomically.
type SettlementService interface {
	Settle(ctx context.Context, req SettleFundRequest) (*domain.FundRequest, error)
}

// WithdrawalService settles commission withdrawal requests.
type WithdrawalService interface {
	Settle(ctx context.Context, requestID uuid.UUID, target domain.WithdrawalStatus, actorEmail string) (*domain.WithdrawalRequest, error)
}

// AuthService defines admin authentication.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// CreateUserRequest holds validated input for admin-initiated signup.
type CreateUserRequest struct {
	Email      string
	Name       string
	ReferredBy *uuid.UUID
}

// UserService defines admin-side user management.
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, actorEmail string) (*domain.User, error)
	SetCommissionBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.User, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status domain.UserStatus) error
}

// ProviderService manages stored provider credentials. Decryption stays
// inside the proxy tier; no service method ever returns a plaintext key.
type ProviderService interface {
	Create(ctx context.Context, name, apiURL, apiKey string) (*domain.Provider, error)
	List(ctx context.Context) ([]domain.Provider, error)
}

// DashboardStats aggregates back-office headline numbers.
type DashboardStats struct {
	TotalUsers          int64
	ActiveUsers         int64
	TotalRevenue        decimal.Decimal
	TotalCommissionPaid decimal.Decimal
	EstimatedProfit     decimal.Decimal
}

// ReportingService defines dashboard reporting.
type ReportingService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// AuditService records admin actions, fire-and-forget.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
