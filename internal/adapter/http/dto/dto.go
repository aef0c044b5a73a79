package dto

import (
	"github.com/shopspring/decimal"

	"wallet-console/internal/balance"
	"wallet-console/internal/ledger"
)

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50,safe_id"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128" sanitize:"-"`
}

// SignUpResponse is returned after the account was created.
type SignUpResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse carries the bearer token and the account's role.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}

// TopUpRequest is the request body for POST /user/top-up. Currency defaults
// to USD. The amount is checked by the bank service.
type TopUpRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,currency"`
}

// TransferRequest is the request body for POST /user/transfer.
type TransferRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	TargetUserID int64           `json:"target_user_id" binding:"required,gt=0"`
	Currency     string          `json:"currency" binding:"omitempty,currency"`
}

// ExchangeRequest is the request body for POST /user/exchange.
type ExchangeRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyFrom string          `json:"currency_from" binding:"required,currency"`
	CurrencyTo   string          `json:"currency_to" binding:"required,currency"`
}

// BalanceResponse reports the balance after a top-up or transfer.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	Message string          `json:"message,omitempty"`
}

// ExchangeResponse reports the balance of the destination currency.
type ExchangeResponse struct {
	BalanceTo decimal.Decimal `json:"balance_to"`
	Message   string          `json:"message,omitempty"`
}

// ProfileResponse is the body of GET /user/profile.
type ProfileResponse struct {
	ID       int64            `json:"id"`
	Username string           `json:"username"`
	Balances []balance.Record `json:"balances"`
}

// TransactionsResponse is the body of GET /user/transactions.
type TransactionsResponse struct {
	Transactions []ledger.Record `json:"transactions"`
}

// AdminUser is one row of GET /admin/users. Balances use the "balance" key.
type AdminUser struct {
	ID        int64            `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	IsAdmin   bool             `json:"is_admin"`
	CreatedAt string           `json:"created_at"`
	Balances  []balance.Record `json:"balances"`
}

type AdminUsersResponse struct {
	Users []AdminUser `json:"users"`
}

// AdminTransactionsQuery binds GET /admin/transactions?user_id=ID.
type AdminTransactionsQuery struct {
	UserID int64 `form:"user_id" binding:"required,gt=0"`
}

type AdminTransactionsResponse struct {
	Username     string          `json:"username"`
	Transactions []ledger.Record `json:"transactions"`
}
