package dto

import (
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
)

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ProxyRequest is the request body for the provider proxy. Either provider_id
// (stored credentials) or apiUrl+apiKey must be supplied. Field names follow
// the provider API convention, camelCase included.
type ProxyRequest struct {
	ProviderID *string           `json:"provider_id,omitempty"`
	APIURL     string            `json:"apiUrl"`
	APIKey     string            `json:"apiKey"`
	Action     string            `json:"action" binding:"required"`
	Params     map[string]string `json:"params,omitempty"`
}

// CreateUserRequest is the request body for admin-initiated signup.
type CreateUserRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Name       string  `json:"name" binding:"max=100"`
	ReferredBy *string `json:"referred_by,omitempty"`
}

// AdjustBalanceRequest is the request body for a manual balance adjustment.
// Amount is a signed decimal string; positive credits, negative debits.
type AdjustBalanceRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SetCommissionRequest is the request body for overwriting commission balance.
type SetCommissionRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SetStatusRequest is the request body for blocking/unblocking a user.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateProviderRequest is the request body for storing provider credentials.
type CreateProviderRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	APIURL string `json:"apiUrl" binding:"required,safe_url"`
	APIKey string `json:"apiKey" binding:"required"`
}

// UserResponse is the response body for a panel user.
type UserResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	Balance           string  `json:"balance"`
	TotalSpent        string  `json:"total_spent"`
	CommissionBalance string  `json:"commission_balance"`
	ReferredBy        *string `json:"referred_by,omitempty"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
}

// UserFromDomain maps a domain user into its response shape.
func UserFromDomain(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:                u.ID.String(),
		Email:             u.Email,
		Name:              u.Name,
		Balance:           u.Balance.StringFixed(domain.BalancePlaces),
		TotalSpent:        u.TotalSpent.StringFixed(domain.BalancePlaces),
		CommissionBalance: u.CommissionBalance.StringFixed(domain.BalancePlaces),
		Status:            string(u.Status),
		CreatedAt:         u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if u.ReferredBy != nil {
		ref := u.ReferredBy.String()
		resp.ReferredBy = &ref
	}
	return resp
}

// FundRequestResponse is the response body for a fund request.
type FundRequestResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Amount    string  `json:"amount"`
	Method    string  `json:"method"`
	TrxID     string  `json:"trx_id,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	SettledAt *string `json:"settled_at,omitempty"`
}

// FundRequestFromDomain maps a domain fund request into its response shape.
func FundRequestFromDomain(r *domain.FundRequest) FundRequestResponse {
	resp := FundRequestResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Amount:    r.Amount.StringFixed(domain.BalancePlaces),
		Method:    r.Method,
		TrxID:     r.TrxID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.SettledAt != nil {
		s := r.SettledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.SettledAt = &s
	}
	return resp
}

// WithdrawalResponse is the response body for a withdrawal request.
type WithdrawalResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Amount     string `json:"amount"`
	MethodName string `json:"method_name"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// WithdrawalFromDomain maps a domain withdrawal into its response shape.
func WithdrawalFromDomain(w *domain.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:         w.ID.String(),
		UserID:     w.UserID.String(),
		Amount:     w.Amount.StringFixed(domain.BalancePlaces),
		MethodName: w.MethodName,
		Status:     string(w.Status),
		CreatedAt:  w.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ProviderResponse is the response body for a stored provider. The API key,
// encrypted or not, is never serialized.
type ProviderResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	APIURL    string `json:"api_url"`
	CreatedAt string `json:"created_at"`
}

// ProviderFromDomain maps a domain provider into its response shape.
func ProviderFromDomain(p *domain.Provider) ProviderResponse {
	return ProviderResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		APIURL:    p.APIURL,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// TransactionResponse is the response body for a ledger entry.
type TransactionResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Gateway       string  `json:"gateway"`
	GatewayTrxID  string  `json:"gateway_trx_id,omitempty"`
	FundRequestID *string `json:"fund_request_id,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// TransactionFromDomain maps a domain transaction into its response shape.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID.String(),
		UserID:       t.UserID.String(),
		Type:         string(t.Type),
		Amount:       t.Amount.StringFixed(domain.BalancePlaces),
		Currency:     t.Currency,
		Gateway:      t.Gateway,
		GatewayTrxID: t.GatewayTrxID,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.FundRequestID != nil {
		id := t.FundRequestID.String()
		resp.FundRequestID = &id
	}
	return resp
}

// DashboardStatsResponse is the response body for dashboard stats.
type DashboardStatsResponse struct {
	TotalUsers          int64  `json:"total_users"`
	ActiveUsers         int64  `json:"active_users"`
	TotalRevenue        string `json:"total_revenue"`
	TotalCommissionPaid string `json:"total_commission_paid"`
	EstimatedProfit     string `json:"estimated_profit"`
}

// StatsFromPorts maps dashboard stats into their response shape.
func StatsFromPorts(s *ports.DashboardStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalUsers:          s.TotalUsers,
		ActiveUsers:         s.ActiveUsers,
		TotalRevenue:        s.TotalRevenue.StringFixed(domain.BalancePlaces),
		TotalCommissionPaid: s.TotalCommissionPaid.StringFixed(domain.BalancePlaces),
		EstimatedProfit:     s.EstimatedProfit.StringFixed(domain.BalancePlaces),
	}
}
