package service

import (
	"context"
	"fmt"
	"time"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService for the back-office.
// Failures are deliberately indistinguishable to the caller: unknown email,
// non-admin email, and wrong password all produce the same error.
type AuthServiceImpl struct {
	adminRepo ports.AdminRepository
	hashSvc   ports.HashService
	tokenSvc  ports.TokenService
	policy    ports.AdminPolicy
	auditSvc  ports.AuditService
	log       zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	adminRepo ports.AdminRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	policy ports.AdminPolicy,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		hashSvc:   hashSvc,
		tokenSvc:  tokenSvc,
		policy:    policy,
		auditSvc:  auditSvc,
		log:       log,
	}
}

// Login authenticates an admin and returns a signed JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if email == "" || password == "" {
		return "", time.Time{}, apperror.ErrMissingFields("email, password")
	}

	fail := func(reason string) (string, time.Time, error) {
		s.log.Warn().Str("email", email).Str("reason", reason).Msg("admin login failed")
		s.auditSvc.Log(ctx, newAuditLog(email, domain.AuditActionLoginFail, map[string]interface{}{
			"reason": reason,
		}))
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if !s.policy.IsAdmin(email) {
		return fail("not an admin principal")
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("get admin: %w", err))
	}
	if admin == nil {
		return fail("unknown account")
	}

	ok, err := s.hashSvc.Verify(password, admin.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return fail("wrong password")
	}

	token, expiresAt, err := s.tokenSvc.Generate(admin.ID, admin.Email)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.auditSvc.Log(ctx, newAuditLog(email, domain.AuditActionLoginSuccess, map[string]interface{}{
		"admin_id": admin.ID.String(),
	}))

	return token, expiresAt, nil
}

// EmailAdminPolicy is the default single-principal ports.AdminPolicy: the
// one configured email is the admin, everyone else is not.
type EmailAdminPolicy struct {
	adminEmail string
}

// NewEmailAdminPolicy creates a policy around the configured admin email.
func NewEmailAdminPolicy(adminEmail string) *EmailAdminPolicy {
	return &EmailAdminPolicy{adminEmail: adminEmail}
}

// IsAdmin reports whether the email is the configured admin principal.
func (p *EmailAdminPolicy) IsAdmin(email string) bool {
	return p.adminEmail != "" && email == p.adminEmail
}
