package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smm-admin-gateway/config"
	httpHandler "smm-admin-gateway/internal/adapter/http/handler"
	providerClient "smm-admin-gateway/internal/adapter/provider"
	pgStorage "smm-admin-gateway/internal/adapter/storage/postgres"
	redisStorage "smm-admin-gateway/internal/adapter/storage/redis"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/internal/service"
	"smm-admin-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting SMM Admin Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	fundRepo := pgStorage.NewFundRequestRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	commissionRepo := pgStorage.NewCommissionRepo(pool)
	withdrawalRepo := pgStorage.NewWithdrawalRepo(pool)
	providerRepo := pgStorage.NewProviderRepo(pool)
	adminRepo := pgStorage.NewAdminRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	catalogRepo := pgStorage.NewServiceCatalogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	adminPolicy := service.NewEmailAdminPolicy(cfg.Admin.Email)

	// Initialize business services
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(adminRepo, hashSvc, tokenSvc, adminPolicy, auditSvc, log)
	exchangeSvc := service.NewExchangeService(rateCache, cfg.Exchange, log)
	upstream := providerClient.NewClient(cfg.Provider, log)
	proxySvc := service.NewProxyService(providerRepo, encSvc, upstream, exchangeSvc, cfg.Exchange, log)
	settlementSvc := service.NewSettlementService(
		fundRepo,
		userRepo,
		txRepo,
		commissionRepo,
		auditSvc,
		transactor,
		cfg.Settlement.CommissionRate,
		cfg.Exchange.PlatformCurrency,
		log,
	)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, userRepo, auditSvc, transactor, log)
	userSvc := service.NewUserService(userRepo, txRepo, auditSvc, transactor, cfg.Exchange.PlatformCurrency, log)
	providerSvc := service.NewProviderService(providerRepo, encSvc, auditSvc, log)
	reportingSvc := service.NewReportingService(userRepo, txRepo, commissionRepo, catalogRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		ProxySvc:       proxySvc,
		SettlementSvc:  settlementSvc,
		WithdrawalSvc:  withdrawalSvc,
		UserSvc:        userSvc,
		ProviderSvc:    providerSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		AdminPolicy:    adminPolicy,
		FundRepo:       fundRepo,
		WithdrawalRepo: withdrawalRepo,
		UserRepo:       userRepo,
		TxRepo:         txRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
