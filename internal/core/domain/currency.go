package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// DefaultCurrency is shown when an account has no balances yet.
const DefaultCurrency = USD

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
}

// ParseCurrency normalizes a currency code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// Symbol returns the display symbol, falling back to the code itself.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

// FormatAmount renders an amount with two decimal places prefixed by symbol.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}
