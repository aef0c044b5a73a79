package balance

import (
	"fmt"

	"wallet-console/internal/core/domain"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Record is a balance element on the wire. The profile endpoint reports the
// value as "amount", the admin user list as "balance".
type Record struct {
	Currency string           `json:"currency"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	Symbol   string           `json:"symbol,omitempty"`
}

// DisplayBalance is one formatted dashboard entry.
type DisplayBalance struct {
	Currency domain.Currency
	Symbol   string
	Amount   decimal.Decimal
	Text     string
}

// Decode validates a balance set: currencies are unique and no amount is
// negative.
func Decode(records []Record) ([]domain.Balance, error) {
	seen := make(map[domain.Currency]struct{}, len(records))
	out := make([]domain.Balance, 0, len(records))

	for _, r := range records {
		currency := domain.ParseCurrency(r.Currency)
		if currency == "" {
			return nil, apperror.ErrMalformed(fmt.Errorf("balance without currency"))
		}
		if _, dup := seen[currency]; dup {
			return nil, apperror.ErrMalformed(fmt.Errorf("duplicate balance for %s", currency))
		}
		seen[currency] = struct{}{}

		amount := decimal.Zero
		switch {
		case r.Amount != nil:
			amount = *r.Amount
		case r.Balance != nil:
			amount = *r.Balance
		}
		if amount.IsNegative() {
			return nil, apperror.ErrMalformed(fmt.Errorf("negative %s balance %s", currency, amount))
		}

		symbol := r.Symbol
		if symbol == "" {
			symbol = currency.Symbol()
		}
		out = append(out, domain.Balance{Currency: currency, Amount: amount, Symbol: symbol})
	}

	return out, nil
}

// Aggregate formats each balance on its own; currencies are never summed.
// An empty set yields a single zero balance in the default currency.
func Aggregate(balances []domain.Balance) []DisplayBalance {
	if len(balances) == 0 {
		return []DisplayBalance{display(zero(domain.DefaultCurrency))}
	}

	out := make([]DisplayBalance, len(balances))
	for i, b := range balances {
		out[i] = display(b)
	}
	return out
}

// Lookup returns the balance held in currency, or a zero balance when the
// account holds none.
func Lookup(balances []domain.Balance, currency domain.Currency) domain.Balance {
	for _, b := range balances {
		if b.Currency == currency {
			return b
		}
	}
	return zero(currency)
}

// Format renders the balance for currency, e.g. "$0.00" when absent.
func Format(balances []domain.Balance, currency domain.Currency) string {
	b := Lookup(balances, currency)
	return domain.FormatAmount(b.Symbol, b.Amount)
}

func zero(currency domain.Currency) domain.Balance {
	return domain.Balance{Currency: currency, Amount: decimal.Zero, Symbol: currency.Symbol()}
}

func display(b domain.Balance) DisplayBalance {
	symbol := b.Symbol
	if symbol == "" {
		symbol = b.Currency.Symbol()
	}
	return DisplayBalance{
		Currency: b.Currency,
		Symbol:   symbol,
		Amount:   b.Amount,
		Text:     domain.FormatAmount(symbol, b.Amount),
	}
}
