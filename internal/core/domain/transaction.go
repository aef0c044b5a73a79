package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of money movement.
type TransactionType string

const (
	TransactionTypeTopUp    TransactionType = "top_up"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeExchange TransactionType = "exchange"
)

// ParseTransactionType accepts the spellings the service has used over time.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top_up", "top up", "topup", "top-up":
		return TransactionTypeTopUp, true
	case "transfer":
		return TransactionTypeTransfer, true
	case "exchange":
		return TransactionTypeExchange, true
	default:
		return "", false
	}
}

// Label returns the human-readable name.
func (t TransactionType) Label() string {
	switch t {
	case TransactionTypeTopUp:
		return "Top Up"
	case TransactionTypeTransfer:
		return "Transfer"
	case TransactionTypeExchange:
		return "Exchange"
	default:
		return string(t)
	}
}

// TransactionStatus is the direction of funds from the account's perspective.
type TransactionStatus string

const (
	TransactionStatusCredited TransactionStatus = "credited"
	TransactionStatusDebited  TransactionStatus = "debited"
)

func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credited":
		return TransactionStatusCredited, true
	case "debited":
		return TransactionStatusDebited, true
	default:
		return "", false
	}
}

func (s TransactionStatus) Label() string {
	switch s {
	case TransactionStatusCredited:
		return "Credited"
	case TransactionStatusDebited:
		return "Debited"
	default:
		return string(s)
	}
}

// Transaction is an immutable ledger entry. Details holds the fields that only
// exist for its type.
type Transaction struct {
	ID               int64
	Status           TransactionStatus
	Amount           decimal.Decimal
	Currency         Currency
	Symbol           string
	Timestamp        time.Time
	ResultingBalance *decimal.Decimal
	Details          TransactionDetails
}

// Type returns the tag of the transaction's details.
func (t Transaction) Type() TransactionType {
	return t.Details.Type()
}

// TransactionDetails is implemented by TopUp, Transfer and Exchange.
type TransactionDetails interface {
	Type() TransactionType
}

// Counterparty identifies the other account of a transfer.
type Counterparty struct {
	AccountID int64
	Username  string
}

type TopUp struct{}

func (TopUp) Type() TransactionType { return TransactionTypeTopUp }

// Transfer carries the recipient for outgoing transfers and the sender for
// incoming ones. Either may be nil.
type Transfer struct {
	Recipient *Counterparty
	Sender    *Counterparty
}

func (Transfer) Type() TransactionType { return TransactionTypeTransfer }

type Exchange struct {
	From            Currency
	To              Currency
	ConvertedAmount *decimal.Decimal
}

func (Exchange) Type() TransactionType { return TransactionTypeExchange }
