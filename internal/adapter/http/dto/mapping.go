package dto

import (
	"time"

	"wallet-console/internal/balance"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/ledger"
)

// NewProfileResponse converts a profile, reporting balances under "amount".
func NewProfileResponse(p *domain.Profile) ProfileResponse {
	records := make([]balance.Record, 0, len(p.Balances))
	for _, b := range p.Balances {
		amount := b.Amount
		records = append(records, balance.Record{Currency: string(b.Currency), Amount: &amount, Symbol: b.Symbol})
	}
	return ProfileResponse{ID: p.ID, Username: p.Username, Balances: records}
}

// NewTransactionRecords converts transactions into their wire form, keeping
// their order.
func NewTransactionRecords(txs []domain.Transaction) []ledger.Record {
	out := make([]ledger.Record, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ledger.Encode(tx))
	}
	return out
}

// NewAdminUsersResponse converts accounts, reporting balances under "balance".
func NewAdminUsersResponse(accounts []domain.Account) AdminUsersResponse {
	users := make([]AdminUser, 0, len(accounts))
	for _, a := range accounts {
		records := make([]balance.Record, 0, len(a.Balances))
		for _, b := range a.Balances {
			amount := b.Amount
			records = append(records, balance.Record{Currency: string(b.Currency), Balance: &amount, Symbol: b.Symbol})
		}
		users = append(users, AdminUser{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			IsAdmin:   a.IsAdmin,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
			Balances:  records,
		})
	}
	return AdminUsersResponse{Users: users}
}
