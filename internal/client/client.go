package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"wallet-console/internal/balance"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/gateway"
	"wallet-console/internal/ledger"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Sender is the part of the gateway the client needs.
type Sender interface {
	SendJSON(ctx context.Context, req gateway.Request, out any) error
}

// AccountClient is a typed client for the account service. Every call goes
// through the gateway, so credentials and session expiry are handled there.
type AccountClient struct {
	gw Sender
}

func New(gw Sender) *AccountClient {
	return &AccountClient{gw: gw}
}

// TransferRequest moves Amount of Currency to the account TargetUserID.
type TransferRequest struct {
	Amount       decimal.Decimal
	TargetUserID int64
	Currency     domain.Currency
}

// ExchangeRequest converts Amount from one of the caller's balances to another.
type ExchangeRequest struct {
	Amount decimal.Decimal
	From   domain.Currency
	To     domain.Currency
}

// AdminLedger is one user's transaction history as seen by an administrator.
type AdminLedger struct {
	UserID       int64
	Username     string
	Transactions []ledger.DisplayTransaction
}

// Login exchanges email and password for a credential. It does not store the
// credential; that is the caller's decision.
func (c *AccountClient) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	var resp loginResponse
	err := c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Email: email, Password: password},
		Public: true,
	}, &resp)
	if err != nil {
		return domain.Credential{}, signInError(err)
	}
	if resp.AccessToken == "" {
		return domain.Credential{}, apperror.ErrMalformed(errors.New("login response without access_token"))
	}

	return domain.Credential{Token: resp.AccessToken, Role: domain.ParseRole(resp.Role)}, nil
}

func (c *AccountClient) SignUp(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return apperror.Validation("username, email and password are required")
	}
	return c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   signUpRequest{Username: username, Email: email, Password: password},
		Public: true,
	}, nil)
}

func (c *AccountClient) Profile(ctx context.Context) (domain.Profile, error) {
	var resp profileResponse
	if err := c.gw.SendJSON(ctx, gateway.Request{Method: http.MethodGet, Path: "/user/profile"}, &resp); err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	balances, err := balance.Decode(resp.Balances)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	return domain.Profile{ID: resp.ID, Username: resp.Username, Balances: balances}, nil
}

// TopUp adds amount to the caller's balance and returns the new balance.
// An empty currency lets the service choose its default.
func (c *AccountClient) TopUp(ctx context.Context, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error) {
	if err := positive(amount); err != nil {
		return decimal.Zero, err
	}

	var resp balanceResponse
	err := c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/user/top-up",
		Body:   topUpRequest{Amount: number(amount), Currency: string(currency)},
	}, &resp)
	if err != nil {
		return decimal.Zero, fmt.Errorf("top up: %w", err)
	}
	if resp.Balance == nil {
		return decimal.Zero, apperror.ErrMalformed(errors.New("top-up response without balance"))
	}
	return *resp.Balance, nil
}

func (c *AccountClient) Transfer(ctx context.Context, req TransferRequest) (decimal.Decimal, error) {
	if err := positive(req.Amount); err != nil {
		return decimal.Zero, err
	}
	if req.TargetUserID <= 0 {
		return decimal.Zero, apperror.Validation("recipient account number is required")
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	var resp balanceResponse
	err := c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/user/transfer",
		Body: transferRequest{
			Amount:       number(req.Amount),
			TargetUserID: req.TargetUserID,
			Currency:     string(currency),
		},
	}, &resp)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transfer: %w", err)
	}
	if resp.Balance == nil {
		return decimal.Zero, apperror.ErrMalformed(errors.New("transfer response without balance"))
	}
	return *resp.Balance, nil
}

// Exchange returns the new balance in the destination currency.
func (c *AccountClient) Exchange(ctx context.Context, req ExchangeRequest) (decimal.Decimal, error) {
	if err := positive(req.Amount); err != nil {
		return decimal.Zero, err
	}
	if req.From == "" || req.To == "" {
		return decimal.Zero, apperror.Validation("both currencies are required")
	}

	var resp exchangeResponse
	err := c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/user/exchange",
		Body: exchangeRequest{
			Amount:       number(req.Amount),
			CurrencyFrom: string(req.From),
			CurrencyTo:   string(req.To),
		},
	}, &resp)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange: %w", err)
	}
	if resp.BalanceTo == nil {
		return decimal.Zero, apperror.ErrMalformed(errors.New("exchange response without balance_to"))
	}
	return *resp.BalanceTo, nil
}

// Transactions returns the caller's normalized history.
func (c *AccountClient) Transactions(ctx context.Context) ([]ledger.DisplayTransaction, error) {
	var resp transactionsResponse
	if err := c.gw.SendJSON(ctx, gateway.Request{Method: http.MethodGet, Path: "/user/transactions"}, &resp); err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	if resp.Transactions == nil {
		return nil, apperror.ErrMalformed(errors.New("response without transactions"))
	}

	rows, err := ledger.Normalize(*resp.Transactions)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return rows, nil
}

// AdminUsers lists every account. Requires the admin role server-side.
func (c *AccountClient) AdminUsers(ctx context.Context) ([]domain.Account, error) {
	var resp adminUsersResponse
	if err := c.gw.SendJSON(ctx, gateway.Request{Method: http.MethodGet, Path: "/admin/users"}, &resp); err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	if resp.Users == nil {
		return nil, apperror.ErrMalformed(errors.New("response without users"))
	}

	accounts := make([]domain.Account, 0, len(*resp.Users))
	for _, u := range *resp.Users {
		balances, err := balance.Decode(u.Balances)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", u.ID, err)
		}
		acct := domain.Account{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			IsAdmin:  u.IsAdmin,
			Balances: balances,
		}
		// created_at is informational; an unparseable value leaves it zero.
		if ts, err := ledger.ParseTimestamp(u.CreatedAt); err == nil {
			acct.CreatedAt = ts
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// AdminTransactions returns the normalized history of the user userID.
func (c *AccountClient) AdminTransactions(ctx context.Context, userID int64) (AdminLedger, error) {
	var resp adminTransactionsResponse
	err := c.gw.SendJSON(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/admin/transactions",
		Query:  url.Values{"user_id": {strconv.FormatInt(userID, 10)}},
	}, &resp)
	if err != nil {
		return AdminLedger{}, fmt.Errorf("fetch transactions of user %d: %w", userID, err)
	}
	if resp.Transactions == nil {
		return AdminLedger{}, apperror.ErrMalformed(errors.New("response without transactions"))
	}

	rows, err := ledger.Normalize(*resp.Transactions)
	if err != nil {
		return AdminLedger{}, fmt.Errorf("fetch transactions of user %d: %w", userID, err)
	}
	return AdminLedger{UserID: userID, Username: resp.Username, Transactions: rows}, nil
}

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.Validation("amount must be greater than zero")
	}
	return nil
}

// signInError reports a refused sign-in with the service's message.
// Unreachable and malformed outcomes keep their own codes.
func signInError(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Code {
	case apperror.CodeRejected, apperror.CodeServiceFailure:
		return apperror.ErrSignInRejected(apperror.ServiceMessage(err), appErr.HTTPStatus)
	default:
		return err
	}
}
