package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// Amounts travel as text so NUMERIC keeps its exact value in both directions.
const (
	accountColumns = `id, username, email, password_hash, is_admin, created_at`

	transactionColumns = `id, type, status, amount::text, currency, resulting_balance::text,
		counterparty_id, counterparty_username, currency_from, currency_to, converted_amount::text, created_at`

	upsertBalance = `INSERT INTO balances (account_id, currency, amount) VALUES ($1, $2, $3::numeric)
		ON CONFLICT (account_id, currency) DO UPDATE SET amount = balances.amount + EXCLUDED.amount
		RETURNING amount::text`

	insertTransaction = `INSERT INTO transactions (account_id, type, status, amount, currency, resulting_balance,
		counterparty_id, counterparty_username, currency_from, currency_to, converted_amount, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7, $8, $9, $10, $11::numeric, $12)`
)

// AccountRepo implements ports.AccountRepository on PostgreSQL.
type AccountRepo struct {
	pool Pool
	now  func() time.Time
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts the account and assigns its id and creation time.
func (r *AccountRepo) Create(ctx context.Context, rec *ports.UserRecord) error {
	query := `INSERT INTO accounts (username, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	createdAt := r.now()
	var id int64
	err := r.pool.QueryRow(ctx, query,
		rec.Account.Username, rec.Account.Email, rec.PasswordHash, rec.Account.IsAdmin, createdAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrAccountExists()
		}
		return fmt.Errorf("insert account: %w", err)
	}

	rec.Account.ID = id
	rec.Account.CreatedAt = createdAt
	rec.Account.Balances = nil
	return nil
}

// GetByEmail matches the email case-insensitively.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*ports.UserRecord, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = $1`
	return r.getOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*ports.UserRecord, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *AccountRepo) getOne(ctx context.Context, query string, arg any) (*ports.UserRecord, error) {
	rec := &ports.UserRecord{}
	a := &rec.Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.Email, &rec.PasswordHash, &a.IsAdmin, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	balances, err := r.balances(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Balances = balances
	return rec, nil
}

// balances returns the account's balances in first-funded order.
func (r *AccountRepo) balances(ctx context.Context, accountID int64) ([]domain.Balance, error) {
	query := `SELECT currency, amount::text FROM balances WHERE account_id = $1 ORDER BY funded_seq`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	out := []domain.Balance{}
	for rows.Next() {
		var currency, amount string
		if err := rows.Scan(&currency, &amount); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		b, err := newBalance(currency, amount)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return out, nil
}

// List returns accounts in id order.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	index := make(map[int64]int)
	for rows.Next() {
		var (
			a    domain.Account
			hash string
		)
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &hash, &a.IsAdmin, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		a.Balances = []domain.Balance{}
		index[a.ID] = len(accounts)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	balRows, err := r.pool.Query(ctx, `SELECT account_id, currency, amount::text FROM balances ORDER BY account_id, funded_seq`)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer balRows.Close()

	for balRows.Next() {
		var (
			accountID        int64
			currency, amount string
		)
		if err := balRows.Scan(&accountID, &currency, &amount); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		i, ok := index[accountID]
		if !ok {
			continue
		}
		b, err := newBalance(currency, amount)
		if err != nil {
			return nil, err
		}
		accounts[i].Balances = append(accounts[i].Balances, b)
	}
	if err := balRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return accounts, nil
}

// History returns the account's transactions oldest first.
func (r *AccountRepo) History(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, apperror.ErrUnknownAccount(userID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var row transactionRow
		err := rows.Scan(
			&row.id, &row.typ, &row.status, &row.amount, &row.currency, &row.balance,
			&row.counterpartyID, &row.counterpartyName, &row.from, &row.to, &row.converted, &row.createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		tx, err := row.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return out, nil
}

// Apply runs all postings in one database transaction. The touched accounts
// are locked in id order so concurrent transfers in opposite directions
// cannot deadlock.
func (r *AccountRepo) Apply(ctx context.Context, postings []ports.Posting) ([]decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin postings: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockAccounts(ctx, tx, postings); err != nil {
		return nil, err
	}

	now := r.now()
	results := make([]decimal.Decimal, len(postings))
	for i, p := range postings {
		var balText string
		err := tx.QueryRow(ctx, upsertBalance, p.UserID, string(p.Currency), p.Delta.String()).Scan(&balText)
		if err != nil {
			return nil, fmt.Errorf("update balance: %w", err)
		}
		bal, err := decimal.NewFromString(balText)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", balText, err)
		}
		if bal.IsNegative() {
			return nil, apperror.ErrInsufficientFunds()
		}

		d := splitDetails(p.Tx.Details)
		_, err = tx.Exec(ctx, insertTransaction,
			p.UserID, string(p.Tx.Type()), string(p.Tx.Status), p.Tx.Amount.String(), string(p.Tx.Currency), balText,
			d.counterpartyID, d.counterpartyName, d.from, d.to, d.converted, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		results[i] = bal
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit postings: %w", err)
	}
	return results, nil
}

func lockAccounts(ctx context.Context, tx pgx.Tx, postings []ports.Posting) error {
	ids := make([]int64, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.UserID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	rows, err := tx.Query(ctx, `SELECT id FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan locked account: %w", err)
		}
		locked[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate locked accounts: %w", err)
	}

	for _, id := range ids {
		if !locked[id] {
			return apperror.ErrUnknownAccount(id)
		}
	}
	return nil
}

type transactionRow struct {
	id               int64
	typ              string
	status           string
	amount           string
	currency         string
	balance          string
	counterpartyID   *int64
	counterpartyName *string
	from             *string
	to               *string
	converted        *string
	createdAt        time.Time
}

func (row transactionRow) transaction() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(row.amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d amount: %w", row.id, err)
	}
	bal, err := decimal.NewFromString(row.balance)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d balance: %w", row.id, err)
	}

	currency := domain.Currency(row.currency)
	tx := domain.Transaction{
		ID:               row.id,
		Status:           domain.TransactionStatus(row.status),
		Amount:           amount,
		Currency:         currency,
		Symbol:           currency.Symbol(),
		Timestamp:        row.createdAt.UTC(),
		ResultingBalance: &bal,
	}

	switch domain.TransactionType(row.typ) {
	case domain.TransactionTypeTopUp:
		tx.Details = domain.TopUp{}
	case domain.TransactionTypeTransfer:
		var cp *domain.Counterparty
		if row.counterpartyID != nil {
			cp = &domain.Counterparty{AccountID: *row.counterpartyID, Username: deref(row.counterpartyName)}
		}
		if tx.Status == domain.TransactionStatusCredited {
			tx.Details = domain.Transfer{Sender: cp}
		} else {
			tx.Details = domain.Transfer{Recipient: cp}
		}
	case domain.TransactionTypeExchange:
		ex := domain.Exchange{From: domain.Currency(deref(row.from)), To: domain.Currency(deref(row.to))}
		if row.converted != nil {
			c, err := decimal.NewFromString(*row.converted)
			if err != nil {
				return domain.Transaction{}, fmt.Errorf("transaction %d converted amount: %w", row.id, err)
			}
			ex.ConvertedAmount = &c
		}
		tx.Details = ex
	default:
		return domain.Transaction{}, fmt.Errorf("transaction %d has unknown type %q", row.id, row.typ)
	}
	return tx, nil
}

// detailColumns are the nullable columns filled from a transaction's details.
type detailColumns struct {
	counterpartyID   *int64
	counterpartyName *string
	from             *string
	to               *string
	converted        *string
}

func splitDetails(details domain.TransactionDetails) detailColumns {
	var d detailColumns
	switch v := details.(type) {
	case domain.Transfer:
		cp := v.Recipient
		if cp == nil {
			cp = v.Sender
		}
		if cp != nil {
			id, name := cp.AccountID, cp.Username
			d.counterpartyID, d.counterpartyName = &id, &name
		}
	case domain.Exchange:
		from, to := string(v.From), string(v.To)
		d.from, d.to = &from, &to
		if v.ConvertedAmount != nil {
			c := v.ConvertedAmount.String()
			d.converted = &c
		}
	}
	return d
}

func newBalance(currency, amount string) (domain.Balance, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("parse %s balance %q: %w", currency, amount, err)
	}
	c := domain.Currency(currency)
	return domain.Balance{Currency: c, Amount: a, Symbol: c.Symbol()}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
