package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProviderServiceImpl implements ports.ProviderService. API keys are
// encrypted before they touch storage and only decrypted server-side for
// outbound proxy calls.
type ProviderServiceImpl struct {
	providerRepo ports.ProviderRepository
	encSvc       ports.EncryptionService
	auditSvc     ports.AuditService
	log          zerolog.Logger
}

// NewProviderService creates a new ProviderServiceImpl.
func NewProviderService(
	providerRepo ports.ProviderRepository,
	encSvc ports.EncryptionService,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *ProviderServiceImpl {
	return &ProviderServiceImpl{
		providerRepo: providerRepo,
		encSvc:       encSvc,
		auditSvc:     auditSvc,
		log:          log,
	}
}

// Create stores a provider with an encrypted API key.
func (s *ProviderServiceImpl) Create(ctx context.Context, name, apiURL, apiKey string) (*domain.Provider, error) {
	name = strings.TrimSpace(name)
	apiURL = strings.TrimSpace(apiURL)
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if apiURL == "" {
		missing = append(missing, "apiUrl")
	}
	if apiKey == "" {
		missing = append(missing, "apiKey")
	}
	if len(missing) > 0 {
		return nil, apperror.ErrMissingFields(strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		return nil, apperror.Validation("apiUrl must be an absolute http(s) URL")
	}

	enc, err := s.encSvc.Encrypt(apiKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt provider key: %w", err))
	}

	p := &domain.Provider{
		ID:        uuid.New(),
		Name:      name,
		APIURL:    apiURL,
		APIKeyEnc: enc,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.providerRepo.Create(ctx, p); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create provider: %w", err))
	}

	s.auditSvc.Log(ctx, newAuditLog("", domain.AuditActionProviderCreated, map[string]interface{}{
		"provider_id": p.ID.String(),
		"name":        p.Name,
	}))

	return p, nil
}

// List returns all stored providers.
func (s *ProviderServiceImpl) List(ctx context.Context) ([]domain.Provider, error) {
	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list providers: %w", err))
	}
	return providers, nil
}
