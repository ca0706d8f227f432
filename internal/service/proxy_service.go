package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"smm-admin-gateway/config"
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Provider actions whose responses carry USD amounts that must be rewritten
// into platform currency before they reach any client.
const (
	actionServices = "services"
	actionBalance  = "balance"
)

// ProxyServiceImpl implements ports.ProxyService. It forwards validated
// calls to an SMM provider API and normalizes monetary fields in the
// response so that USD provider pricing never leaks downstream.
type ProxyServiceImpl struct {
	providerRepo ports.ProviderRepository
	encSvc       ports.EncryptionService
	client       ports.ProviderClient
	rates        ports.ExchangeRateSource
	cfg          config.ExchangeConfig
	log          zerolog.Logger
}

// NewProxyService creates a new ProxyServiceImpl.
func NewProxyService(
	providerRepo ports.ProviderRepository,
	encSvc ports.EncryptionService,
	client ports.ProviderClient,
	rates ports.ExchangeRateSource,
	cfg config.ExchangeConfig,
	log zerolog.Logger,
) *ProxyServiceImpl {
	return &ProxyServiceImpl{
		providerRepo: providerRepo,
		encSvc:       encSvc,
		client:       client,
		rates:        rates,
		cfg:          cfg,
		log:          log,
	}
}

// Forward validates the request, calls the provider once, and rewrites
// monetary fields for the services and balance actions. All other actions
// pass through untouched.
func (s *ProxyServiceImpl) Forward(ctx context.Context, req ports.ForwardRequest) (interface{}, error) {
	if req.Action == "" {
		return nil, apperror.ErrMissingFields("action")
	}

	apiURL, apiKey, err := s.resolveCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Do(ctx, apiURL, apiKey, req.Action, req.Params)
	if err != nil {
		return nil, apperror.ErrUpstream(err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		// Challenge pages and HTML error bodies land here. The raw body is
		// logged server-side only.
		s.log.Warn().
			Str("action", req.Action).
			Int("body_bytes", len(body)).
			Msg("provider returned non-JSON body")
		return nil, apperror.ErrUpstream(fmt.Errorf("provider returned non-JSON body"))
	}

	switch req.Action {
	case actionServices:
		return s.rewriteServices(ctx, payload)
	case actionBalance:
		return s.rewriteBalance(ctx, payload)
	default:
		return payload, nil
	}
}

// resolveCredentials returns the endpoint pair, preferring stored provider
// credentials over inline ones.
func (s *ProxyServiceImpl) resolveCredentials(ctx context.Context, req ports.ForwardRequest) (string, string, error) {
	if req.ProviderID != nil {
		p, err := s.providerRepo.GetByID(ctx, *req.ProviderID)
		if err != nil {
			return "", "", apperror.InternalError(fmt.Errorf("get provider: %w", err))
		}
		if p == nil {
			return "", "", apperror.ErrProviderNotFound()
		}
		apiKey, err := s.encSvc.Decrypt(p.APIKeyEnc)
		if err != nil {
			return "", "", apperror.ErrEncryptionFailure(fmt.Errorf("decrypt provider key: %w", err))
		}
		return p.APIURL, apiKey, nil
	}

	var missing []string
	if req.APIURL == "" {
		missing = append(missing, "apiUrl")
	}
	if req.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if len(missing) > 0 {
		return "", "", apperror.ErrMissingFields(strings.Join(missing, ", "))
	}
	return req.APIURL, req.APIKey, nil
}

// rewriteServices multiplies each service rate by the exchange rate.
// Items without a parseable rate pass through untouched rather than
// failing the whole list.
func (s *ProxyServiceImpl) rewriteServices(ctx context.Context, payload interface{}) (interface{}, error) {
	list, ok := payload.([]interface{})
	if !ok {
		// Some providers answer {"error": "..."} with HTTP 200.
		return payload, nil
	}

	rate, origin := s.rates.Rate(ctx)
	s.log.Debug().
		Str("rate", rate.String()).
		Str("origin", string(origin)).
		Int("services", len(list)).
		Msg("rewriting service rates")

	for _, item := range list {
		svc, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		raw, ok := stringValue(svc["rate"])
		if !ok {
			continue
		}
		converted, err := domain.ConvertString(raw, rate, s.cfg.FeeBufferPercent, domain.RatePlaces)
		if err != nil {
			continue
		}
		svc["rate"] = converted
	}

	return list, nil
}

// rewriteBalance converts a USD balance into platform currency. Balances
// already reported in another currency pass through untouched.
func (s *ProxyServiceImpl) rewriteBalance(ctx context.Context, payload interface{}) (interface{}, error) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return payload, nil
	}

	currency, _ := stringValue(obj["currency"])
	if currency != "USD" {
		return obj, nil
	}
	raw, ok := stringValue(obj["balance"])
	if !ok {
		return obj, nil
	}

	rate, origin := s.rates.Rate(ctx)
	converted, err := domain.ConvertString(raw, rate, s.cfg.FeeBufferPercent, domain.BalancePlaces)
	if err != nil {
		return obj, nil
	}

	obj["balance"] = converted
	obj["currency"] = s.cfg.PlatformCurrency

	s.log.Debug().
		Str("rate", rate.String()).
		Str("origin", string(origin)).
		Msg("rewrote provider balance")

	return obj, nil
}

// stringValue renders a JSON scalar (string or number) as its string form.
func stringValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return decimal.NewFromFloat(t).String(), true
	default:
		return "", false
	}
}
