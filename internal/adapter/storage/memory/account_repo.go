package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

type accountRow struct {
	rec      ports.UserRecord
	balances map[domain.Currency]decimal.Decimal
	order    []domain.Currency // first-funded order, used for display
	history  []domain.Transaction
}

// AccountRepo implements ports.AccountRepository in process memory.
type AccountRepo struct {
	mu        sync.RWMutex
	rows      map[int64]*accountRow
	byEmail   map[string]int64
	usernames map[string]struct{}
	nextUser  int64
	nextTx    int64
	now       func() time.Time
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		rows:      make(map[int64]*accountRow),
		byEmail:   make(map[string]int64),
		usernames: make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *AccountRepo) Create(_ context.Context, rec *ports.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(rec.Account.Email)
	if _, taken := r.byEmail[email]; taken {
		return apperror.ErrAccountExists()
	}
	if _, taken := r.usernames[rec.Account.Username]; taken {
		return apperror.ErrAccountExists()
	}

	r.nextUser++
	rec.Account.ID = r.nextUser
	rec.Account.CreatedAt = r.now()
	rec.Account.Balances = nil

	r.rows[rec.Account.ID] = &accountRow{
		rec:      *rec,
		balances: make(map[domain.Currency]decimal.Decimal),
	}
	r.byEmail[email] = rec.Account.ID
	r.usernames[rec.Account.Username] = struct{}{}
	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*ports.UserRecord, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepo) GetByID(_ context.Context, id int64) (*ports.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	rec := row.rec
	rec.Account.Balances = row.snapshot()
	return &rec, nil
}

// List returns accounts in id order.
func (r *AccountRepo) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.rows))
	for id := int64(1); id <= r.nextUser; id++ {
		row, ok := r.rows[id]
		if !ok {
			continue
		}
		acct := row.rec.Account
		acct.Balances = row.snapshot()
		out = append(out, acct)
	}
	return out, nil
}

// History returns the account's transactions oldest first.
func (r *AccountRepo) History(_ context.Context, userID int64) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[userID]
	if !ok {
		return nil, apperror.ErrUnknownAccount(userID)
	}
	out := make([]domain.Transaction, len(row.history))
	copy(out, row.history)
	return out, nil
}

func (r *AccountRepo) Apply(_ context.Context, postings []ports.Posting) ([]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Work on a scratch copy of every touched balance so a failing posting
	// leaves nothing behind.
	type key struct {
		user     int64
		currency domain.Currency
	}
	scratch := make(map[key]decimal.Decimal)
	results := make([]decimal.Decimal, len(postings))

	for i, p := range postings {
		row, ok := r.rows[p.UserID]
		if !ok {
			return nil, apperror.ErrUnknownAccount(p.UserID)
		}
		k := key{p.UserID, p.Currency}
		current, seen := scratch[k]
		if !seen {
			current = row.balances[p.Currency]
		}
		next := current.Add(p.Delta)
		if next.IsNegative() {
			return nil, apperror.ErrInsufficientFunds()
		}
		scratch[k] = next
		results[i] = next
	}

	now := r.now()
	for i, p := range postings {
		row := r.rows[p.UserID]
		if _, funded := row.balances[p.Currency]; !funded {
			row.order = append(row.order, p.Currency)
		}
		row.balances[p.Currency] = results[i]

		r.nextTx++
		tx := p.Tx
		tx.ID = r.nextTx
		tx.Timestamp = now
		bal := results[i]
		tx.ResultingBalance = &bal
		row.history = append(row.history, tx)
	}

	return results, nil
}

func (row *accountRow) snapshot() []domain.Balance {
	out := make([]domain.Balance, 0, len(row.order))
	for _, c := range row.order {
		out = append(out, domain.Balance{Currency: c, Amount: row.balances[c], Symbol: c.Symbol()})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

