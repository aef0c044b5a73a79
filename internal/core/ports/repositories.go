package ports

import (
	"context"

	"wallet-console/internal/core/domain"

	"github.com/shopspring/decimal"
)

// UserRecord is a stored account with its password hash.
type UserRecord struct {
	Account      domain.Account
	PasswordHash string
}

// Posting changes one balance and records the movement in that account's
// history.
type Posting struct {
	UserID   int64
	Currency domain.Currency
	Delta    decimal.Decimal

	// Tx is appended to the account's history. Its ID, Timestamp and
	// ResultingBalance are filled in by the repository.
	Tx domain.Transaction
}

// AccountRepository defines persistence for sandbox accounts and ledgers.
type AccountRepository interface {
	// Create assigns the account id and creation time.
	Create(ctx context.Context, rec *UserRecord) error
	GetByEmail(ctx context.Context, email string) (*UserRecord, error) // nil, nil when absent
	GetByID(ctx context.Context, id int64) (*UserRecord, error)       // nil, nil when absent
	List(ctx context.Context) ([]domain.Account, error)
	History(ctx context.Context, userID int64) ([]domain.Transaction, error)

	// Apply commits all postings or none. It fails with an insufficient
	// funds error when any balance would become negative, and returns the
	// resulting balance of each posting.
	Apply(ctx context.Context, postings []Posting) ([]decimal.Decimal, error)
}
