package console

import (
	"context"
	"fmt"

	"wallet-console/internal/client"
	"wallet-console/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Receipt is the outcome of a money movement.
type Receipt struct {
	Route      domain.Route
	Currency   domain.Currency
	NewBalance decimal.Decimal
	Message    string
}

// TopUp adds funds. An empty currency tops up the default currency.
func (a *App) TopUp(ctx context.Context, amount decimal.Decimal, currency domain.Currency) (Receipt, error) {
	t, err := a.issue(domain.RouteTopUp)
	if err != nil {
		return Receipt{}, err
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	bal, err := a.svc.TopUp(ctx, amount, currency)
	if err != nil {
		return Receipt{}, a.fail(t, err)
	}
	return a.receipt(t, currency, bal, "Successfully topped up!")
}

func (a *App) Transfer(ctx context.Context, req client.TransferRequest) (Receipt, error) {
	t, err := a.issue(domain.RouteTransfer)
	if err != nil {
		return Receipt{}, err
	}
	if req.Currency == "" {
		req.Currency = domain.DefaultCurrency
	}

	bal, err := a.svc.Transfer(ctx, req)
	if err != nil {
		return Receipt{}, a.fail(t, err)
	}
	return a.receipt(t, req.Currency, bal, "Transfer successful!")
}

// Exchange converts between two of the user's balances. The receipt shows
// the destination balance.
func (a *App) Exchange(ctx context.Context, req client.ExchangeRequest) (Receipt, error) {
	t, err := a.issue(domain.RouteExchange)
	if err != nil {
		return Receipt{}, err
	}

	bal, err := a.svc.Exchange(ctx, req)
	if err != nil {
		return Receipt{}, a.fail(t, err)
	}
	return a.receipt(t, req.To, bal, "Exchange successful!")
}

func (a *App) receipt(t ticket, currency domain.Currency, bal decimal.Decimal, headline string) (Receipt, error) {
	r := Receipt{
		Route:      t.route,
		Currency:   currency,
		NewBalance: bal,
		Message:    fmt.Sprintf("%s New balance: %s", headline, domain.FormatAmount(currency.Symbol(), bal)),
	}
	if err := a.settle(t, func(s *State) { s.LastReceipt = &r }); err != nil {
		return Receipt{}, err
	}
	a.notifier.Notify(r.Message)
	return r, nil
}
