package handler

import (
	"wallet-console/internal/adapter/http/dto"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"
	"wallet-console/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator views. Routes are guarded by
// middleware.AdminOnly.
type AdminHandler struct {
	bankSvc ports.BankService
}

func NewAdminHandler(bankSvc ports.BankService) *AdminHandler {
	return &AdminHandler{bankSvc: bankSvc}
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(c *gin.Context) {
	accounts, err := h.bankSvc.Users(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewAdminUsersResponse(accounts))
}

// Transactions handles GET /admin/transactions?user_id=ID.
func (h *AdminHandler) Transactions(c *gin.Context) {
	var q dto.AdminTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(dto.BindMessage(err)))
		return
	}

	acct, txs, err := h.bankSvc.UserTransactions(c.Request.Context(), q.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.AdminTransactionsResponse{
		Username:     acct.Username,
		Transactions: dto.NewTransactionRecords(txs),
	})
}
