package console

import (
	"context"
	"fmt"
	"time"

	"wallet-console/internal/balance"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/ledger"
)

// State is what the views currently display. Each field is replaced as a
// whole by the latest successful fetch for its view.
type State struct {
	Dashboard   *DashboardView
	History     *HistoryView
	AdminUsers  *AdminUsersView
	AdminLedger *AdminLedgerView
	LastReceipt *Receipt
}

type DashboardView struct {
	Header   string
	Profile  domain.Profile
	Balances []balance.DisplayBalance
}

type HistoryView struct {
	Rows []ledger.DisplayTransaction
}

// AdminUserRow keeps the legacy USD and EUR columns next to the full list
// of balances.
type AdminUserRow struct {
	ID       int64
	Username string
	Email    string
	Created  string
	IsAdmin  bool
	USD      string
	EUR      string
	Balances []balance.DisplayBalance
}

type AdminUsersView struct {
	Rows []AdminUserRow
}

type AdminLedgerView struct {
	UserID   int64
	Username string
	Rows     []ledger.DisplayTransaction
}

// Dashboard fetches the profile and balances.
func (a *App) Dashboard(ctx context.Context) (DashboardView, error) {
	t, err := a.issue(domain.RouteDashboard)
	if err != nil {
		return DashboardView{}, err
	}

	profile, err := a.svc.Profile(ctx)
	if err != nil {
		return DashboardView{}, a.fail(t, err)
	}

	view := DashboardView{
		Header:   fmt.Sprintf("%s (Acc No: %d)", profile.Username, profile.ID),
		Profile:  profile,
		Balances: balance.Aggregate(profile.Balances),
	}
	if err := a.settle(t, func(s *State) { s.Dashboard = &view }); err != nil {
		return DashboardView{}, err
	}
	return view, nil
}

// History fetches the signed-in user's transactions.
func (a *App) History(ctx context.Context) (HistoryView, error) {
	t, err := a.issue(domain.RouteTransactions)
	if err != nil {
		return HistoryView{}, err
	}

	rows, err := a.svc.Transactions(ctx)
	if err != nil {
		return HistoryView{}, a.fail(t, err)
	}

	view := HistoryView{Rows: rows}
	if err := a.settle(t, func(s *State) { s.History = &view }); err != nil {
		return HistoryView{}, err
	}
	return view, nil
}

// AdminUsers lists every account.
func (a *App) AdminUsers(ctx context.Context) (AdminUsersView, error) {
	t, err := a.issue(domain.RouteAdminUsers)
	if err != nil {
		return AdminUsersView{}, err
	}

	accounts, err := a.svc.AdminUsers(ctx)
	if err != nil {
		return AdminUsersView{}, a.fail(t, err)
	}

	rows := make([]AdminUserRow, len(accounts))
	for i, acct := range accounts {
		rows[i] = AdminUserRow{
			ID:       acct.ID,
			Username: acct.Username,
			Email:    acct.Email,
			Created:  createdDate(acct.CreatedAt),
			IsAdmin:  acct.IsAdmin,
			USD:      balance.Format(acct.Balances, domain.USD),
			EUR:      balance.Format(acct.Balances, domain.EUR),
			Balances: balance.Aggregate(acct.Balances),
		}
	}

	view := AdminUsersView{Rows: rows}
	if err := a.settle(t, func(s *State) { s.AdminUsers = &view }); err != nil {
		return AdminUsersView{}, err
	}
	return view, nil
}

// AdminLedger drills into one user's transactions.
func (a *App) AdminLedger(ctx context.Context, userID int64) (AdminLedgerView, error) {
	t, err := a.issue(domain.RouteAdminTransactions)
	if err != nil {
		return AdminLedgerView{}, err
	}

	l, err := a.svc.AdminTransactions(ctx, userID)
	if err != nil {
		return AdminLedgerView{}, a.fail(t, err)
	}

	view := AdminLedgerView{UserID: l.UserID, Username: l.Username, Rows: l.Transactions}
	if err := a.settle(t, func(s *State) { s.AdminLedger = &view }); err != nil {
		return AdminLedgerView{}, err
	}
	return view, nil
}

func createdDate(t time.Time) string {
	if t.IsZero() {
		return ledger.Placeholder
	}
	return t.Format("2006-01-02")
}
