package memory

import (
	"context"
	"sync"
	"testing"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, repo *AccountRepo, username string) int64 {
	t.Helper()
	rec := &ports.UserRecord{
		Account:      domain.Account{Username: username, Email: username + "@example.com"},
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	return rec.Account.ID
}

func TestAccountRepo_CreateAndLookup(t *testing.T) {
	repo := NewAccountRepo()
	ctx := context.Background()

	id := createUser(t, repo, "alice")
	assert.Equal(t, int64(1), id)

	rec, err := repo.GetByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "alice", rec.Account.Username)
	assert.False(t, rec.Account.CreatedAt.IsZero())

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountRepo_DuplicateRejected(t *testing.T) {
	repo := NewAccountRepo()
	createUser(t, repo, "alice")

	err := repo.Create(context.Background(), &ports.UserRecord{
		Account: domain.Account{Username: "alice2", Email: "alice@example.com"},
	})
	assert.Equal(t, apperror.CodeAccountExists, apperror.CodeOf(err))

	err = repo.Create(context.Background(), &ports.UserRecord{
		Account: domain.Account{Username: "alice", Email: "other@example.com"},
	})
	assert.Equal(t, apperror.CodeAccountExists, apperror.CodeOf(err))
}

func TestAccountRepo_ApplyIsAllOrNothing(t *testing.T) {
	repo := NewAccountRepo()
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	_, err := repo.Apply(ctx, []ports.Posting{
		{UserID: alice, Currency: domain.USD, Delta: decimal.NewFromInt(100), Tx: domain.Transaction{Details: domain.TopUp{}}},
	})
	require.NoError(t, err)

	// Credit lands first, then the debit overdraws: neither may stick.
	_, err = repo.Apply(ctx, []ports.Posting{
		{UserID: bob, Currency: domain.USD, Delta: decimal.NewFromInt(150), Tx: domain.Transaction{Details: domain.Transfer{}}},
		{UserID: alice, Currency: domain.USD, Delta: decimal.NewFromInt(-150), Tx: domain.Transaction{Details: domain.Transfer{}}},
	})
	assert.Equal(t, apperror.CodeInsufficientFunds, apperror.CodeOf(err))

	bobRec, err := repo.GetByID(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobRec.Account.Balances)

	history, err := repo.History(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAccountRepo_ApplyRecordsHistory(t *testing.T) {
	repo := NewAccountRepo()
	ctx := context.Background()
	alice := createUser(t, repo, "alice")

	results, err := repo.Apply(ctx, []ports.Posting{
		{UserID: alice, Currency: domain.EUR, Delta: decimal.NewFromInt(10), Tx: domain.Transaction{Details: domain.TopUp{}}},
		{UserID: alice, Currency: domain.USD, Delta: decimal.NewFromInt(5), Tx: domain.Transaction{Details: domain.TopUp{}}},
		{UserID: alice, Currency: domain.EUR, Delta: decimal.NewFromInt(-4), Tx: domain.Transaction{Details: domain.TopUp{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "6", results[2].String())

	history, err := repo.History(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(1), history[0].ID)
	assert.Equal(t, "10", history[0].ResultingBalance.String())
	assert.Equal(t, "6", history[2].ResultingBalance.String())

	rec, err := repo.GetByID(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rec.Account.Balances, 2)
	assert.Equal(t, domain.EUR, rec.Account.Balances[0].Currency, "balances keep first-funded order")
	assert.Equal(t, "€", rec.Account.Balances[0].Symbol)
}

func TestAccountRepo_UnknownAccount(t *testing.T) {
	repo := NewAccountRepo()

	_, err := repo.Apply(context.Background(), []ports.Posting{{UserID: 42, Currency: domain.USD, Delta: decimal.NewFromInt(1)}})
	assert.Equal(t, apperror.CodeUnknownAccount, apperror.CodeOf(err))

	_, err = repo.History(context.Background(), 42)
	assert.Equal(t, apperror.CodeUnknownAccount, apperror.CodeOf(err))
}

func TestAccountRepo_ConcurrentTopUps(t *testing.T) {
	repo := NewAccountRepo()
	alice := createUser(t, repo, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Apply(context.Background(), []ports.Posting{
				{UserID: alice, Currency: domain.USD, Delta: decimal.NewFromInt(2), Tx: domain.Transaction{Details: domain.TopUp{}}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := repo.GetByID(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "100", rec.Account.Balances[0].Amount.String())
}
