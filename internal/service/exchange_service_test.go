package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smm-admin-gateway/config"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func exchangeCfg(url string) config.ExchangeConfig {
	return config.ExchangeConfig{
		RateServiceURL:   url,
		PlatformCurrency: "PKR",
		FallbackRate:     280.50,
		CacheTTL:         time.Hour,
		FetchTimeout:     2 * time.Second,
	}
}

func TestExchangeService_Rate_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cache := mocks.NewMockRateCache(ctrl)
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "PKR").Return(decimal.RequireFromString("281.1234"), true, nil)

	svc := NewExchangeService(cache, exchangeCfg("http://unused.invalid"), zerolog.Nop())
	rate, origin := svc.Rate(ctx)

	assert.Equal(t, ports.RateOriginCached, origin)
	assert.Equal(t, "281.1234", rate.String())
}

func TestExchangeService_Rate_LiveFetchAndCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"USD":1,"PKR":282.75}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cache := mocks.NewMockRateCache(ctrl)
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "PKR").Return(decimal.Zero, false, nil)
	cache.EXPECT().Set(ctx, "PKR", gomock.Any(), time.Hour).
		DoAndReturn(func(_ context.Context, _ string, rate decimal.Decimal, _ time.Duration) error {
			assert.Equal(t, "282.75", rate.String())
			return nil
		})

	svc := NewExchangeService(cache, exchangeCfg(srv.URL), zerolog.Nop())
	rate, origin := svc.Rate(ctx)

	assert.Equal(t, ports.RateOriginLive, origin)
	assert.Equal(t, "282.75", rate.String())
}

func TestExchangeService_Rate_FallbackOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cache := mocks.NewMockRateCache(ctrl)
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "PKR").Return(decimal.Zero, false, nil)

	svc := NewExchangeService(cache, exchangeCfg(srv.URL), zerolog.Nop())
	rate, origin := svc.Rate(ctx)

	assert.Equal(t, ports.RateOriginFallback, origin)
	assert.Equal(t, "280.5", rate.String())
}

func TestExchangeService_Rate_FallbackOnMissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"USD":1,"EUR":0.92}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cache := mocks.NewMockRateCache(ctrl)
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "PKR").Return(decimal.Zero, false, nil)

	svc := NewExchangeService(cache, exchangeCfg(srv.URL), zerolog.Nop())
	rate, origin := svc.Rate(ctx)

	assert.Equal(t, ports.RateOriginFallback, origin)
	assert.Equal(t, "280.5", rate.String())
}

func TestExchangeService_Rate_CacheErrorFallsThroughToLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"PKR":280}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cache := mocks.NewMockRateCache(ctrl)
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "PKR").Return(decimal.Zero, false, assert.AnError)
	cache.EXPECT().Set(ctx, "PKR", gomock.Any(), time.Hour).Return(assert.AnError)

	svc := NewExchangeService(cache, exchangeCfg(srv.URL), zerolog.Nop())
	rate, origin := svc.Rate(ctx)

	// Cache failures never fail rate resolution.
	assert.Equal(t, ports.RateOriginLive, origin)
	assert.Equal(t, "280", rate.String())
}

func TestExchangeService_Rate_NilCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"PKR":279.9}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	svc := NewExchangeService(nil, exchangeCfg(srv.URL), zerolog.Nop())
	rate, origin := svc.Rate(context.Background())

	require.Equal(t, ports.RateOriginLive, origin)
	assert.Equal(t, "279.9", rate.String())
}
