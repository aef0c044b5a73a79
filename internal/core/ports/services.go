package ports

//go:generate mockgen -destination=mocks/sandbox_mocks.go -package=mocks . AccountRepository,AuthService,BankService,HashService,TokenService

import (
	"context"
	"time"

	"wallet-console/internal/core/domain"

	"github.com/shopspring/decimal"
)

// The interfaces below belong to the sandbox account service.

// HashService defines password hashing operations.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenService issues and validates the bearer tokens handed to clients.
type TokenService interface {
	Generate(userID int64, role domain.Role) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}

// TokenClaims holds the parsed claims from a bearer token.
type TokenClaims struct {
	UserID int64
	Role   domain.Role
}

// SignUpRequest contains the fields needed to open an account.
type SignUpRequest struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// AuthService handles account creation and sign-in.
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, domain.Role, error)
}

// BankService moves money between balances and reports history.
type BankService interface {
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error)
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error)
	Exchange(ctx context.Context, userID int64, amount decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error)
	Transactions(ctx context.Context, userID int64) ([]domain.Transaction, error)
	Users(ctx context.Context) ([]domain.Account, error)
	UserTransactions(ctx context.Context, userID int64) (*domain.Account, []domain.Transaction, error)
}
