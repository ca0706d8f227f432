package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"smm-admin-gateway/config"
	"smm-admin-gateway/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ExchangeServiceImpl implements ports.ExchangeRateSource as a read-through
// cache over a public exchange rate API. Resolution order is cache, live
// fetch, configured fallback constant. It never returns an error: pricing
// must keep working when the rate API is down, at the cost of a stale or
// conservative rate.
type ExchangeServiceImpl struct {
	cache      ports.RateCache
	httpClient HTTPClient
	cfg        config.ExchangeConfig
	fallback   decimal.Decimal
	log        zerolog.Logger
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewExchangeService creates a new ExchangeServiceImpl.
func NewExchangeService(cache ports.RateCache, cfg config.ExchangeConfig, log zerolog.Logger) *ExchangeServiceImpl {
	return &ExchangeServiceImpl{
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		cfg:        cfg,
		fallback:   decimal.NewFromFloat(cfg.FallbackRate),
		log:        log,
	}
}

// NewExchangeServiceWithHTTP creates a service with a custom HTTP client (tests).
func NewExchangeServiceWithHTTP(cache ports.RateCache, httpClient HTTPClient, cfg config.ExchangeConfig, log zerolog.Logger) *ExchangeServiceImpl {
	return &ExchangeServiceImpl{
		cache:      cache,
		httpClient: httpClient,
		cfg:        cfg,
		fallback:   decimal.NewFromFloat(cfg.FallbackRate),
		log:        log,
	}
}

// Rate resolves the USD -> platform currency rate.
func (s *ExchangeServiceImpl) Rate(ctx context.Context) (decimal.Decimal, ports.RateOrigin) {
	currency := s.cfg.PlatformCurrency

	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx, currency)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate cache read failed, falling through to live fetch")
		} else if ok && rate.IsPositive() {
			return rate, ports.RateOriginCached
		}
	}

	rate, err := s.fetchLive(ctx, currency)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("fallback_rate", s.fallback.String()).
			Msg("live rate fetch failed, using fallback")
		return s.fallback, ports.RateOriginFallback
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, currency, rate, s.cfg.CacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("rate cache write failed")
		}
	}

	s.log.Info().
		Str("currency", currency).
		Str("rate", rate.String()).
		Msg("live exchange rate fetched")

	return rate, ports.RateOriginLive
}

// rateAPIResponse is the shape of the public exchange rate API payload.
type rateAPIResponse struct {
	Result string                 `json:"result"`
	Rates  map[string]json.Number `json:"rates"`
}

func (s *ExchangeServiceImpl) fetchLive(ctx context.Context, currency string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.RateServiceURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading rate response: %w", err)
	}

	var payload rateAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("parsing rate response: %w", err)
	}

	raw, ok := payload.Rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("currency %s missing from rate response", currency)
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing rate value: %w", err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive rate %s for %s", rate, currency)
	}

	return rate, nil
}
