package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"smm-admin-gateway/config"
	httpHandler "smm-admin-gateway/internal/adapter/http/handler"
	redisStorage "smm-admin-gateway/internal/adapter/storage/redis"
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/internal/service"
	"smm-admin-gateway/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "AdminPass123!"
	testAESKey        = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

// testApp builds the full application stack: real HTTP layer, middleware,
// services, and Redis stores (miniredis), over in-memory repos. Upstream
// provider and rate APIs are stubbed.

type testApp struct {
	server  *httptest.Server
	redis   *miniredis.Miniredis
	rateSrv *httptest.Server

	userRepo       *inMemoryUserRepo
	fundRepo       *inMemoryFundRequestRepo
	txRepo         *inMemoryTransactionRepo
	commissionRepo *inMemoryCommissionRepo
	withdrawalRepo *inMemoryWithdrawalRepo
	providerRepo   *inMemoryProviderRepo
	auditRepo      *inMemoryAuditRepo

	provider *stubProviderClient
}

// stubProviderClient serves canned provider API responses.
type stubProviderClient struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
}

func newStubProviderClient() *stubProviderClient {
	return &stubProviderClient{
		responses: map[string]string{
			"balance":  `{"balance": "12.34", "currency": "USD"}`,
			"services": `[{"service": 1, "name": "Followers", "rate": "1.50", "min": "100", "max": "10000"}]`,
			"status":   `{"status": "Completed", "remains": "0"}`,
		},
	}
}

func (c *stubProviderClient) Do(ctx context.Context, apiURL, apiKey, action string, params map[string]string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	resp, ok := c.responses[action]
	if !ok {
		resp = `{"error": "unknown action"}`
	}
	return []byte(resp), nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Stub rate API serving a fixed USD -> PKR rate
	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result": "success", "rates": {"PKR": 280.50}}`)
	}))

	log := logger.New("error", false)

	exCfg := config.ExchangeConfig{
		RateServiceURL:   rateSrv.URL,
		PlatformCurrency: "PKR",
		FallbackRate:     280.50,
		FeeBufferPercent: 3.0,
		CacheTTL:         time.Hour,
		FetchTimeout:     2 * time.Second,
	}

	// Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services
	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret", 24*time.Hour, "test-issuer")
	adminPolicy := service.NewEmailAdminPolicy(testAdminEmail)

	// In-memory repos
	userRepo := newInMemoryUserRepo()
	fundRepo := newInMemoryFundRequestRepo()
	txRepo := newInMemoryTransactionRepo()
	commissionRepo := newInMemoryCommissionRepo()
	withdrawalRepo := newInMemoryWithdrawalRepo()
	providerRepo := newInMemoryProviderRepo()
	adminRepo := newInMemoryAdminRepo()
	auditRepo := newInMemoryAuditRepo()
	catalogRepo := newInMemoryCatalogRepo("0.30")
	transactor := newInMemoryTransactor()

	// Seed the admin account
	passwordHash, err := hashSvc.Hash(testAdminPassword)
	require.NoError(t, err)
	require.NoError(t, adminRepo.Create(context.Background(), &domain.Admin{
		ID:           uuid.New(),
		Email:        testAdminEmail,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}))

	// Business services
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(adminRepo, hashSvc, tokenSvc, adminPolicy, auditSvc, log)
	exchangeSvc := service.NewExchangeService(rateCache, exCfg, log)
	providerClient := newStubProviderClient()
	proxySvc := service.NewProxyService(providerRepo, encSvc, providerClient, exchangeSvc, exCfg, log)
	settlementSvc := service.NewSettlementService(fundRepo, userRepo, txRepo, commissionRepo, auditSvc, transactor, 0.05, exCfg.PlatformCurrency, log)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, userRepo, auditSvc, transactor, log)
	userSvc := service.NewUserService(userRepo, txRepo, auditSvc, transactor, exCfg.PlatformCurrency, log)
	providerSvc := service.NewProviderService(providerRepo, encSvc, auditSvc, log)
	reportingSvc := service.NewReportingService(userRepo, txRepo, commissionRepo, catalogRepo, log)

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
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:         server,
		redis:          mr,
		rateSrv:        rateSrv,
		userRepo:       userRepo,
		fundRepo:       fundRepo,
		txRepo:         txRepo,
		commissionRepo: commissionRepo,
		withdrawalRepo: withdrawalRepo,
		providerRepo:   providerRepo,
		auditRepo:      auditRepo,
		provider:       providerClient,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.rateSrv.Close()
}

// --- HTTP helpers ---

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	resp, err := http.Post(a.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	data := loginResp["data"].(map[string]interface{})
	return data["token"].(string)
}

func (a *testApp) do(t *testing.T, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (a *testApp) createUser(t *testing.T, token, email string, referredBy *string) string {
	t.Helper()
	payload := map[string]interface{}{"email": email, "name": "Test User"}
	if referredBy != nil {
		payload["referred_by"] = *referredBy
	}
	resp, body := a.do(t, http.MethodPost, "/api/v1/users", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	return data["id"].(string)
}

func (a *testApp) seedFundRequest(t *testing.T, userID string, amount string) string {
	t.Helper()
	uid, err := uuid.Parse(userID)
	require.NoError(t, err)
	req, err := domain.NewFundRequest(uid, decimal.RequireFromString(amount), "easypaisa", "EP-TEST-001")
	require.NoError(t, err)
	require.NoError(t, a.fundRepo.Create(context.Background(), req))
	return req.ID.String()
}

func (a *testApp) userByID(t *testing.T, token, id string) map[string]interface{} {
	t.Helper()
	resp, body := a.do(t, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, item := range body["data"].([]interface{}) {
		u := item.(map[string]interface{})
		if u["id"] == id {
			return u
		}
	}
	t.Fatalf("user %s not found in list", id)
	return nil
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_Login(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)
	assert.NotEmpty(t, token)
}

func TestIntegration_Login_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_003", body["error_code"])
}

func TestIntegration_Login_NonAdminEmail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Unknown identities get the same response as bad passwords.
	resp, body := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "stranger@example.com",
		"password": testAdminPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_003", body["error_code"])
}

func TestIntegration_AuthRequired(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", body["error_code"])
}

func TestIntegration_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := app.do(t, http.MethodPut, "/api/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "VAL_002", body["error_code"])
}

func TestIntegration_FundApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)

	// Referrer, then a referred user with 500.00 starting balance
	referrerID := app.createUser(t, token, "referrer@example.com", nil)
	buyerID := app.createUser(t, token, "buyer@example.com", &referrerID)

	resp, body := app.do(t, http.MethodPost, "/api/v1/users/"+buyerID+"/balance", token,
		map[string]string{"amount": "500.00"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "500.00", body["data"].(map[string]interface{})["balance"])

	reqID := app.seedFundRequest(t, buyerID, "1000.00")

	// Shows up in the pending queue
	resp, body = app.do(t, http.MethodGet, "/api/v1/funds/pending", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]interface{}), 1)

	// Approve
	resp, body = app.do(t, http.MethodPost, "/api/v1/funds/"+reqID+"/approve", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, "1000.00", data["amount"])
	assert.NotEmpty(t, data["settled_at"])

	// Balance credited, referrer rewarded 5%
	buyer := app.userByID(t, token, buyerID)
	assert.Equal(t, "1500.00", buyer["balance"])

	referrer := app.userByID(t, token, referrerID)
	assert.Equal(t, "50.00", referrer["commission_balance"])

	// Ledger holds the adjustment and the deposit
	resp, body = app.do(t, http.MethodGet, "/api/v1/users/"+buyerID+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txns := body["data"].([]interface{})
	require.Len(t, txns, 2)

	var deposit map[string]interface{}
	for _, item := range txns {
		txn := item.(map[string]interface{})
		if txn["type"] == "manual_deposit" {
			deposit = txn
		}
	}
	require.NotNil(t, deposit)
	assert.Equal(t, "1000.00", deposit["amount"])
	assert.Equal(t, "PKR", deposit["currency"])
	assert.Equal(t, "completed", deposit["status"])
	assert.Equal(t, reqID, deposit["fund_request_id"])

	// Second settlement attempt of either kind conflicts
	resp, body = app.do(t, http.MethodPost, "/api/v1/funds/"+reqID+"/approve", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FND_002", body["error_code"])

	resp, body = app.do(t, http.MethodPost, "/api/v1/funds/"+reqID+"/reject", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FND_002", body["error_code"])

	// Audit trail recorded the approval
	var audited bool
	for _, entry := range app.auditRepo.list() {
		if entry.Action == domain.AuditActionFundRequestCompleted && entry.ActorEmail == testAdminEmail {
			audited = true
		}
	}
	assert.True(t, audited, "approval should be audited")
}

func TestIntegration_FundRejection_NoCredit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)
	userID := app.createUser(t, token, "rejected@example.com", nil)
	reqID := app.seedFundRequest(t, userID, "750.00")

	resp, body := app.do(t, http.MethodPost, "/api/v1/funds/"+reqID+"/reject", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["data"].(map[string]interface{})["status"])

	user := app.userByID(t, token, userID)
	assert.Equal(t, "0.00", user["balance"], "rejection must not move money")

	resp, body = app.do(t, http.MethodGet, "/api/v1/users/"+userID+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"], "rejection must not write ledger entries")
}

func TestIntegration_WithdrawalRejection_RefundsCommission(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)
	userID := app.createUser(t, token, "withdrawer@example.com", nil)
	uid, err := uuid.Parse(userID)
	require.NoError(t, err)

	// Amount was held from commission balance when the request was filed.
	wr := &domain.WithdrawalRequest{
		ID:         uuid.New(),
		UserID:     uid,
		Amount:     decimal.RequireFromString("50.00"),
		MethodName: "jazzcash",
		Status:     domain.WithdrawalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, app.withdrawalRepo.Create(context.Background(), wr))

	resp, body := app.do(t, http.MethodPost, "/api/v1/withdrawals/"+wr.ID.String()+"/reject", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["data"].(map[string]interface{})["status"])

	user := app.userByID(t, token, userID)
	assert.Equal(t, "50.00", user["commission_balance"], "rejection refunds the held amount")
}

func TestIntegration_ProxyBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)

	// Store provider credentials
	resp, body := app.do(t, http.MethodPost, "/api/v1/providers", token, map[string]string{
		"name":   "TopSMM",
		"apiUrl": "https://topsmm.example/api/v2",
		"apiKey": "secret-key-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	providerID := body["data"].(map[string]interface{})["id"].(string)

	// Balance comes back converted: 12.34 * 280.50 * 1.03 = 3565.21 PKR
	resp, body = app.do(t, http.MethodPost, "/api/v1/provider/proxy", token, map[string]interface{}{
		"provider_id": providerID,
		"action":      "balance",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3565.21", body["balance"])
	assert.Equal(t, "PKR", body["currency"])
	assert.NotContains(t, body, "data", "proxy responses carry no envelope")
}

func TestIntegration_ProxyServices_RatesConverted(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)

	resp, raw := app.doRaw(t, http.MethodPost, "/api/v1/provider/proxy", token, map[string]interface{}{
		"apiUrl": "https://topsmm.example/api/v2",
		"apiKey": "inline-key",
		"action": "services",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var services []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &services))
	require.Len(t, services, 1)
	// 1.50 * 280.50 * 1.03 = 433.3725
	assert.Equal(t, "433.3725", services[0]["rate"])
}

func TestIntegration_ProxyUnknownProvider(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)

	resp, body := app.do(t, http.MethodPost, "/api/v1/provider/proxy", token, map[string]interface{}{
		"provider_id": uuid.NewString(),
		"action":      "balance",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRV_002", body["error_code"])
}

func TestIntegration_ProviderList_HidesKeys(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)

	resp, _ := app.do(t, http.MethodPost, "/api/v1/providers", token, map[string]string{
		"name":   "TopSMM",
		"apiUrl": "https://topsmm.example/api/v2",
		"apiKey": "super-secret-key",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := app.doRaw(t, http.MethodGet, "/api/v1/providers", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(raw), "super-secret-key")
}

func TestIntegration_DashboardStats(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.login(t)
	userID := app.createUser(t, token, "stats@example.com", nil)
	reqID := app.seedFundRequest(t, userID, "1000.00")

	resp, _ := app.do(t, http.MethodPost, "/api/v1/funds/"+reqID+"/approve", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := app.do(t, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_users"])
	assert.Equal(t, float64(1), data["active_users"])
	assert.Equal(t, "1000.00", data["total_revenue"])
	assert.Equal(t, "0.00", data["total_commission_paid"])
	// 1000.00 revenue * 0.30 catalog margin - 0.00 commission
	assert.Equal(t, "300.00", data["estimated_profit"])
}

func TestIntegration_LoginRateLimit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payload := map[string]string{"email": testAdminEmail, "password": "wrong"}

	// auth_login allows 10 per minute per client. The window is wall-clock
	// aligned, so a boundary may pass mid-test; keep firing until blocked.
	var limited bool
	for i := 0; i < 25; i++ {
		resp, body := app.do(t, http.MethodPost, "/api/v1/auth/login", "", payload)
		if resp.StatusCode == http.StatusTooManyRequests {
			assert.Equal(t, "RATE_001", body["error_code"])
			limited = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}
	assert.True(t, limited, "repeated logins should eventually hit the rate limit")
}

// doRaw is do without JSON decoding, for responses that are not objects.
func (a *testApp) doRaw(t *testing.T, method, path, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}
