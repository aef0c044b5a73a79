package handler

import (
	"wallet-console/internal/adapter/http/dto"
	"wallet-console/internal/adapter/http/middleware"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"
	"wallet-console/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's own account.
type UserHandler struct {
	bankSvc ports.BankService
}

func NewUserHandler(bankSvc ports.BankService) *UserHandler {
	return &UserHandler{bankSvc: bankSvc}
}

// Profile handles GET /user/profile.
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	profile, err := h.bankSvc.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewProfileResponse(profile))
}

// TopUp handles POST /user/top-up.
func (h *UserHandler) TopUp(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(dto.BindMessage(err)))
		return
	}

	bal, err := h.bankSvc.TopUp(c.Request.Context(), userID, req.Amount, currencyOrDefault(req.Currency))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{Balance: bal, Message: "Top-up successful"})
}

// Transfer handles POST /user/transfer.
func (h *UserHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(dto.BindMessage(err)))
		return
	}

	bal, err := h.bankSvc.Transfer(c.Request.Context(), userID, req.TargetUserID, req.Amount, currencyOrDefault(req.Currency))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{Balance: bal, Message: "Transfer successful"})
}

// Exchange handles POST /user/exchange.
func (h *UserHandler) Exchange(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(dto.BindMessage(err)))
		return
	}

	bal, err := h.bankSvc.Exchange(c.Request.Context(), userID, req.Amount,
		domain.ParseCurrency(req.CurrencyFrom), domain.ParseCurrency(req.CurrencyTo))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ExchangeResponse{BalanceTo: bal, Message: "Exchange successful"})
}

// Transactions handles GET /user/transactions.
func (h *UserHandler) Transactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txs, err := h.bankSvc.Transactions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TransactionsResponse{Transactions: dto.NewTransactionRecords(txs)})
}

func currencyOrDefault(s string) domain.Currency {
	if c := domain.ParseCurrency(s); c != "" {
		return c
	}
	return domain.DefaultCurrency
}
