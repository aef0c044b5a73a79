package client

import (
	"encoding/json"

	"wallet-console/internal/balance"
	"wallet-console/internal/ledger"

	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	ID       int64            `json:"id"`
	Username string           `json:"username"`
	Balances []balance.Record `json:"balances"`
}

// Amounts go out as JSON numbers, which is what the service parses.
type topUpRequest struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency,omitempty"`
}

type transferRequest struct {
	Amount       json.Number `json:"amount"`
	TargetUserID int64       `json:"target_user_id"`
	Currency     string      `json:"currency"`
}

type exchangeRequest struct {
	Amount       json.Number `json:"amount"`
	CurrencyFrom string      `json:"currency_from"`
	CurrencyTo   string      `json:"currency_to"`
}

type balanceResponse struct {
	Balance *decimal.Decimal `json:"balance"`
}

type exchangeResponse struct {
	BalanceTo *decimal.Decimal `json:"balance_to"`
}

// A nil slice pointer means the field was absent.
type transactionsResponse struct {
	Transactions *[]ledger.Record `json:"transactions"`
}

type adminUsersResponse struct {
	Users *[]accountRecord `json:"users"`
}

type accountRecord struct {
	ID        int64            `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	IsAdmin   bool             `json:"is_admin"`
	CreatedAt string           `json:"created_at"`
	Balances  []balance.Record `json:"balances"`
}

type adminTransactionsResponse struct {
	Username     string           `json:"username"`
	Transactions *[]ledger.Record `json:"transactions"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
