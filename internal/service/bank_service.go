package service

import (
	"context"
	"fmt"
	"slices"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

type ratePair struct{ from, to domain.Currency }

// Fixed sandbox rates. Converting a currency into itself is always 1.
var exchangeRates = map[ratePair]decimal.Decimal{
	{domain.USD, domain.EUR}: decimal.RequireFromString("0.92"),
	{domain.EUR, domain.USD}: decimal.RequireFromString("1.087"),
}

// SupportedCurrencies are the currencies the sandbox holds balances in.
var SupportedCurrencies = []domain.Currency{domain.USD, domain.EUR}

// BankServiceImpl implements ports.BankService.
type BankServiceImpl struct {
	accounts ports.AccountRepository
}

func NewBankService(accounts ports.AccountRepository) *BankServiceImpl {
	return &BankServiceImpl{accounts: accounts}
}

func (s *BankServiceImpl) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	rec, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		ID:       rec.Account.ID,
		Username: rec.Account.Username,
		Balances: rec.Account.Balances,
	}, nil
}

// TopUp credits amount and returns the new balance in that currency.
func (s *BankServiceImpl) TopUp(ctx context.Context, userID int64, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error) {
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if err := validateCurrency(currency); err != nil {
		return decimal.Zero, err
	}

	results, err := s.accounts.Apply(ctx, []ports.Posting{{
		UserID:   userID,
		Currency: currency,
		Delta:    amount,
		Tx:       newTx(domain.TransactionStatusCredited, amount, currency, domain.TopUp{}),
	}})
	if err != nil {
		return decimal.Zero, passThrough(err, "top up")
	}
	return results[0], nil
}

// Transfer moves amount between two accounts in one currency and returns the
// sender's new balance.
func (s *BankServiceImpl) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error) {
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if err := validateCurrency(currency); err != nil {
		return decimal.Zero, err
	}
	if fromID == toID {
		return decimal.Zero, apperror.Validation("Cannot transfer to yourself")
	}

	sender, err := s.account(ctx, fromID)
	if err != nil {
		return decimal.Zero, err
	}
	recipient, err := s.account(ctx, toID)
	if err != nil {
		return decimal.Zero, err
	}

	results, err := s.accounts.Apply(ctx, []ports.Posting{
		{
			UserID:   fromID,
			Currency: currency,
			Delta:    amount.Neg(),
			Tx: newTx(domain.TransactionStatusDebited, amount, currency, domain.Transfer{
				Recipient: &domain.Counterparty{AccountID: toID, Username: recipient.Account.Username},
			}),
		},
		{
			UserID:   toID,
			Currency: currency,
			Delta:    amount,
			Tx: newTx(domain.TransactionStatusCredited, amount, currency, domain.Transfer{
				Sender: &domain.Counterparty{AccountID: fromID, Username: sender.Account.Username},
			}),
		},
	})
	if err != nil {
		return decimal.Zero, passThrough(err, "transfer")
	}
	return results[0], nil
}

// Exchange converts amount of from into to at the fixed rate, rounded to
// cents, and returns the new balance in to.
func (s *BankServiceImpl) Exchange(ctx context.Context, userID int64, amount decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error) {
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	rate, err := Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	converted := amount.Mul(rate).Round(2)
	details := domain.Exchange{From: from, To: to, ConvertedAmount: &converted}

	results, err := s.accounts.Apply(ctx, []ports.Posting{
		{
			UserID:   userID,
			Currency: from,
			Delta:    amount.Neg(),
			Tx:       newTx(domain.TransactionStatusDebited, amount, from, details),
		},
		{
			UserID:   userID,
			Currency: to,
			Delta:    converted,
			Tx:       newTx(domain.TransactionStatusCredited, converted, to, details),
		},
	})
	if err != nil {
		return decimal.Zero, passThrough(err, "exchange")
	}
	return results[1], nil
}

// Transactions returns the account's history newest first.
func (s *BankServiceImpl) Transactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	txs, err := s.accounts.History(ctx, userID)
	if err != nil {
		return nil, passThrough(err, "history")
	}
	slices.Reverse(txs)
	return txs, nil
}

func (s *BankServiceImpl) Users(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// UserTransactions is the administrator drill-down into one account.
func (s *BankServiceImpl) UserTransactions(ctx context.Context, userID int64) (*domain.Account, []domain.Transaction, error) {
	rec, err := s.account(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	txs, err := s.Transactions(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return &rec.Account, txs, nil
}

// Rate returns the conversion rate from one currency to another.
func Rate(from, to domain.Currency) (decimal.Decimal, error) {
	if err := validateCurrency(from); err != nil {
		return decimal.Zero, err
	}
	if err := validateCurrency(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := exchangeRates[ratePair{from, to}]
	if !ok {
		return decimal.Zero, apperror.Validation(fmt.Sprintf("No exchange rate from %s to %s", from, to))
	}
	return rate, nil
}

func (s *BankServiceImpl) account(ctx context.Context, id int64) (*ports.UserRecord, error) {
	rec, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find account %d: %w", id, err))
	}
	if rec == nil {
		return nil, apperror.ErrUnknownAccount(id)
	}
	return rec, nil
}

func newTx(status domain.TransactionStatus, amount decimal.Decimal, currency domain.Currency, details domain.TransactionDetails) domain.Transaction {
	return domain.Transaction{
		Status:   status,
		Amount:   amount,
		Currency: currency,
		Symbol:   currency.Symbol(),
		Details:  details,
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.Validation("Amount must be positive")
	}
	return nil
}

func validateCurrency(c domain.Currency) error {
	if !slices.Contains(SupportedCurrencies, c) {
		return apperror.Validation(fmt.Sprintf("Unsupported currency %s", c))
	}
	return nil
}
