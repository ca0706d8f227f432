package handler

import (
	"smm-admin-gateway/internal/adapter/http/middleware"
	redisStore "smm-admin-gateway/internal/adapter/storage/redis"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ProxySvc       ports.ProxyService
	SettlementSvc  ports.SettlementService
	WithdrawalSvc  ports.WithdrawalService
	UserSvc        ports.UserService
	ProviderSvc    ports.ProviderService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	AdminPolicy    ports.AdminPolicy
	FundRepo       ports.FundRequestRepository
	WithdrawalRepo ports.WithdrawalRepository
	UserRepo       ports.UserRepository
	TxRepo         ports.TransactionRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, apperror.ErrMethodNotAllowed())
	})

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated admin routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.AdminPolicy, deps.Logger)

	proxyHandler := NewProxyHandler(deps.ProxySvc)
	provider := v1.Group("/provider", jwtAuth)
	{
		provider.POST("/proxy", rl("proxy"), proxyHandler.Forward)
	}

	fundsHandler := NewFundsHandler(deps.SettlementSvc, deps.FundRepo)
	funds := v1.Group("/funds", jwtAuth)
	{
		funds.GET("/pending", rl("admin"), fundsHandler.ListPending)
		funds.POST("/:requestID/approve", rl("settlement"), fundsHandler.Approve)
		funds.POST("/:requestID/reject", rl("settlement"), fundsHandler.Reject)
	}

	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc, deps.WithdrawalRepo)
	withdrawals := v1.Group("/withdrawals", jwtAuth)
	{
		withdrawals.GET("/pending", rl("admin"), withdrawalHandler.ListPending)
		withdrawals.POST("/:requestID/approve", rl("settlement"), withdrawalHandler.Approve)
		withdrawals.POST("/:requestID/reject", rl("settlement"), withdrawalHandler.Reject)
	}

	userHandler := NewUserHandler(deps.UserSvc, deps.UserRepo, deps.TxRepo)
	users := v1.Group("/users", jwtAuth)
	{
		users.POST("", rl("admin"), userHandler.Create)
		users.GET("", rl("admin"), userHandler.List)
		users.POST("/:userID/balance", rl("settlement"), userHandler.AdjustBalance)
		users.PUT("/:userID/commission", rl("settlement"), userHandler.SetCommission)
		users.PUT("/:userID/status", rl("admin"), userHandler.SetStatus)
		users.GET("/:userID/transactions", rl("admin"), userHandler.ListTransactions)
	}

	providerHandler := NewProviderHandler(deps.ProviderSvc)
	providers := v1.Group("/providers", jwtAuth)
	{
		providers.POST("", rl("admin"), providerHandler.Create)
		providers.GET("", rl("admin"), providerHandler.List)
	}

	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)
	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("/stats", rl("admin"), dashboardHandler.GetStats)
	}

	return r
}
