package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-console/internal/adapter/http/middleware"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/internal/core/ports/mocks"
	"wallet-console/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Auth Handler Tests ---

func TestSignUp_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().SignUp(gomock.Any(), ports.SignUpRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: " secret ",
	}).Return(&domain.Account{ID: 4, Username: "alice"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": " secret ",
	})

	h.SignUp(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, float64(4), resp["id"])
}

func TestSignUp_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/auth/signup", map[string]string{"username": "alice", "email": "not-an-email", "password": "x"})

	h.SignUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email", decodeBody(t, w)["message"])
}

func TestSignUp_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().SignUp(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrAccountExists())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/auth/signup", map[string]string{
		"username": "taken", "email": "taken@example.com", "password": "pw",
	})

	h.SignUp(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "root@example.com", "pw").Return("jwt-token", domain.RoleAdmin, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/auth/login", map[string]string{"email": "root@example.com", "password": "pw"})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "jwt-token", resp["access_token"])
	assert.Equal(t, "admin", resp["role"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return("", domain.Role(""), apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/auth/login", map[string]string{"email": "x@example.com", "password": "bad"})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["message"])
}

// --- User Handler Tests ---

func TestTopUp_DefaultsToUSD(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewUserHandler(mockBank)

	mockBank.EXPECT().TopUp(gomock.Any(), int64(3), decimal.RequireFromString("25.5"), domain.USD).
		Return(decimal.RequireFromString("125.5"), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/user/top-up", bytes.NewReader([]byte(`{"amount": 25.5}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, int64(3))

	h.TopUp(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "125.5", decodeBody(t, w)["balance"])
}

func TestTopUp_MissingUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewUserHandler(mocks.NewMockBankService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/user/top-up", map[string]any{"amount": 1})

	h.TopUp(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewUserHandler(mockBank)

	mockBank.EXPECT().Transfer(gomock.Any(), int64(1), int64(2), gomock.Any(), domain.EUR).
		Return(decimal.Zero, apperror.ErrInsufficientFunds())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/user/transfer", map[string]any{"amount": 10, "target_user_id": 2, "currency": "eur"})
	c.Set(middleware.CtxUserID, int64(1))

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient funds", decodeBody(t, w)["message"])
}

func TestExchange_ReturnsBalanceTo(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewUserHandler(mockBank)

	mockBank.EXPECT().Exchange(gomock.Any(), int64(1), gomock.Any(), domain.USD, domain.EUR).
		Return(decimal.RequireFromString("46"), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/user/exchange", map[string]any{"amount": 50, "currency_from": "USD", "currency_to": "EUR"})
	c.Set(middleware.CtxUserID, int64(1))

	h.Exchange(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "46", decodeBody(t, w)["balance_to"])
}

func TestTransactions_WireShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewUserHandler(mockBank)

	converted := decimal.RequireFromString("9.2")
	mockBank.EXPECT().Transactions(gomock.Any(), int64(1)).Return([]domain.Transaction{{
		ID:        8,
		Status:    domain.TransactionStatusDebited,
		Amount:    decimal.NewFromInt(10),
		Currency:  domain.USD,
		Symbol:    "$",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Details:   domain.Exchange{From: domain.USD, To: domain.EUR, ConvertedAmount: &converted},
	}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/user/transactions", nil)
	c.Set(middleware.CtxUserID, int64(1))

	h.Transactions(c)

	require.Equal(t, http.StatusOK, w.Code)
	txs := decodeBody(t, w)["transactions"].([]any)
	require.Len(t, txs, 1)
	tx := txs[0].(map[string]any)
	assert.Equal(t, "exchange", tx["type"])
	assert.Equal(t, "debited", tx["status"])
	assert.Equal(t, "2024-01-02T03:04:05Z", tx["timestamp"])
	assert.Equal(t, "EUR", tx["currency_to"])
	assert.Equal(t, "9.2", tx["converted_amount"])
	assert.NotContains(t, tx, "balance")
}

// --- Admin Handler Tests ---

func TestAdminTransactions_RequiresUserID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAdminHandler(mocks.NewMockBankService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/transactions", nil)

	h.Transactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id is required", decodeBody(t, w)["message"])
}

func TestAdminTransactions_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewAdminHandler(mockBank)

	mockBank.EXPECT().UserTransactions(gomock.Any(), int64(77)).Return(nil, nil, apperror.ErrUnknownAccount(77))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/transactions?user_id=77", nil)

	h.Transactions(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User 77 not found", decodeBody(t, w)["message"])
}

func TestAdminUsers_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBank := mocks.NewMockBankService(ctrl)
	h := NewAdminHandler(mockBank)

	mockBank.EXPECT().Users(gomock.Any()).Return(nil, errors.New("boom"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/users", nil)

	h.Users(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decodeBody(t, w)["status"])
}
