package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the amount held in one currency.
type Balance struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Symbol   string          `json:"symbol"`
}

// Profile is the signed-in user's own account summary.
type Profile struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Balances []Balance `json:"balances"`
}

// Account is a user as seen from the administrator list.
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	Balances  []Balance `json:"balances"`
}
