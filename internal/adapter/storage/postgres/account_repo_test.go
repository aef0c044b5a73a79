package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*AccountRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewAccountRepo(mock)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func accountColumnNames() []string {
	return []string{"id", "username", "email", "password_hash", "is_admin", "created_at"}
}

func transactionColumnNames() []string {
	return []string{"id", "type", "status", "amount", "currency", "resulting_balance",
		"counterparty_id", "counterparty_username", "currency_from", "currency_to", "converted_amount", "created_at"}
}

func ptr[T any](v T) *T { return &v }

func TestAccountRepo_Create(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("alice", "Alice@Example.com", "argon-hash", false, fixedNow).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec := &ports.UserRecord{
		Account:      domain.Account{Username: "alice", Email: "Alice@Example.com"},
		PasswordHash: "argon-hash",
	}
	require.NoError(t, repo.Create(context.Background(), rec))

	assert.Equal(t, int64(7), rec.Account.ID)
	assert.Equal(t, fixedNow, rec.Account.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Create_Duplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("alice", "alice@example.com", "h", false, fixedNow).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "idx_accounts_email"})

	err := repo.Create(context.Background(), &ports.UserRecord{
		Account:      domain.Account{Username: "alice", Email: "alice@example.com"},
		PasswordHash: "h",
	})
	assert.Equal(t, apperror.CodeAccountExists, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE lower\(email\)`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows(accountColumnNames()).
			AddRow(int64(2), "alice", "Alice@Example.com", "argon-hash", false, fixedNow))
	mock.ExpectQuery("SELECT currency, amount::text FROM balances").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"currency", "amount"}).
			AddRow("EUR", "46.00").
			AddRow("USD", "25"))

	rec, err := repo.GetByEmail(context.Background(), "  ALICE@example.com ")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "argon-hash", rec.PasswordHash)
	assert.Equal(t, "alice", rec.Account.Username)
	require.Len(t, rec.Account.Balances, 2)
	assert.Equal(t, domain.EUR, rec.Account.Balances[0].Currency)
	assert.Equal(t, "€", rec.Account.Balances[0].Symbol)
	assert.True(t, decimal.NewFromInt(46).Equal(rec.Account.Balances[0].Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(accountColumnNames()))

	rec, err := repo.GetByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_List(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM accounts ORDER BY id").
		WillReturnRows(pgxmock.NewRows(accountColumnNames()).
			AddRow(int64(1), "admin", "admin@example.com", "h1", true, fixedNow).
			AddRow(int64(2), "alice", "alice@example.com", "h2", false, fixedNow))
	mock.ExpectQuery("SELECT account_id, currency, amount::text FROM balances").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "currency", "amount"}).
			AddRow(int64(2), "USD", "100").
			AddRow(int64(2), "EUR", "9.20"))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.True(t, accounts[0].IsAdmin)
	assert.Empty(t, accounts[0].Balances)
	require.Len(t, accounts[1].Balances, 2)
	assert.Equal(t, domain.USD, accounts[1].Balances[0].Currency)
	assert.Equal(t, domain.EUR, accounts[1].Balances[1].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_History_UnknownAccount(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.History(context.Background(), 42)
	assert.Equal(t, apperror.CodeUnknownAccount, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_History_DecodesDetails(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE account_id").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(transactionColumnNames()).
			AddRow(int64(1), "top_up", "credited", "100", "USD", "100",
				(*int64)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), fixedNow).
			AddRow(int64(2), "transfer", "credited", "25", "USD", "125",
				ptr(int64(2)), ptr("alice"), (*string)(nil), (*string)(nil), (*string)(nil), fixedNow).
			AddRow(int64(3), "exchange", "debited", "50", "USD", "75",
				(*int64)(nil), (*string)(nil), ptr("USD"), ptr("EUR"), ptr("46"), fixedNow))

	txs, err := repo.History(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, domain.TopUp{}, txs[0].Details)
	assert.Equal(t, "$", txs[0].Symbol)
	require.NotNil(t, txs[0].ResultingBalance)
	assert.Equal(t, "100", txs[0].ResultingBalance.String())

	transfer, ok := txs[1].Details.(domain.Transfer)
	require.True(t, ok)
	assert.Nil(t, transfer.Recipient)
	require.NotNil(t, transfer.Sender)
	assert.Equal(t, domain.Counterparty{AccountID: 2, Username: "alice"}, *transfer.Sender)

	ex, ok := txs[2].Details.(domain.Exchange)
	require.True(t, ok)
	assert.Equal(t, domain.USD, ex.From)
	assert.Equal(t, domain.EUR, ex.To)
	require.NotNil(t, ex.ConvertedAmount)
	assert.Equal(t, "46", ex.ConvertedAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func transferPostings() []ports.Posting {
	amount := decimal.NewFromInt(25)
	return []ports.Posting{
		{
			UserID:   3,
			Currency: domain.USD,
			Delta:    amount.Neg(),
			Tx: domain.Transaction{
				Status: domain.TransactionStatusDebited, Amount: amount, Currency: domain.USD,
				Details: domain.Transfer{Recipient: &domain.Counterparty{AccountID: 2, Username: "bob"}},
			},
		},
		{
			UserID:   2,
			Currency: domain.USD,
			Delta:    amount,
			Tx: domain.Transaction{
				Status: domain.TransactionStatusCredited, Amount: amount, Currency: domain.USD,
				Details: domain.Transfer{Sender: &domain.Counterparty{AccountID: 3, Username: "alice"}},
			},
		},
	}
}

func TestAccountRepo_Apply_Transfer(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts WHERE id = ANY").
		WithArgs([]int64{2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)).AddRow(int64(3)))
	mock.ExpectQuery("INSERT INTO balances").
		WithArgs(int64(3), "USD", "-25").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow("75"))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(int64(3), "transfer", "debited", "25", "USD", "75",
			ptr(int64(2)), ptr("bob"), (*string)(nil), (*string)(nil), (*string)(nil), fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO balances").
		WithArgs(int64(2), "USD", "25").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow("25"))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(int64(2), "transfer", "credited", "25", "USD", "25",
			ptr(int64(3)), ptr("alice"), (*string)(nil), (*string)(nil), (*string)(nil), fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	results, err := repo.Apply(context.Background(), transferPostings())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "75", results[0].String())
	assert.Equal(t, "25", results[1].String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Apply_InsufficientFundsRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts WHERE id = ANY").
		WithArgs([]int64{2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)).AddRow(int64(3)))
	mock.ExpectQuery("INSERT INTO balances").
		WithArgs(int64(3), "USD", "-25").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow("-5"))
	mock.ExpectRollback()

	_, err := repo.Apply(context.Background(), transferPostings())
	assert.Equal(t, apperror.CodeInsufficientFunds, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Apply_UnknownAccount(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM accounts WHERE id = ANY").
		WithArgs([]int64{2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectRollback()

	_, err := repo.Apply(context.Background(), transferPostings())
	assert.Equal(t, apperror.CodeUnknownAccount, apperror.CodeOf(err))
	assert.Contains(t, apperror.UserMessage(err), "User 2 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitDetails_Exchange(t *testing.T) {
	converted := decimal.RequireFromString("46.00")
	d := splitDetails(domain.Exchange{From: domain.USD, To: domain.EUR, ConvertedAmount: &converted})

	assert.Nil(t, d.counterpartyID)
	require.NotNil(t, d.from)
	assert.Equal(t, "USD", *d.from)
	assert.Equal(t, "EUR", *d.to)
	assert.Equal(t, "46", *d.converted)
}
