package ledger

import (
	"fmt"
	"strings"
	"time"

	"wallet-console/internal/core/domain"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Record is a transaction as the account service sends it. Different
// endpoints have used different field names over time, so several fields
// have an alternate spelling.
type Record struct {
	ID             int64            `json:"id"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	CurrencySymbol string           `json:"currency_symbol,omitempty"`
	Symbol         string           `json:"symbol,omitempty"`
	Timestamp      string           `json:"timestamp"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`

	// Transfer, outgoing.
	TargetUser     *TargetUser `json:"target_user,omitempty"`
	TargetUserID   *int64      `json:"target_user_id,omitempty"`
	TargetUsername string      `json:"target_username,omitempty"`

	// Transfer, incoming.
	ReceivedFrom   string `json:"received_from,omitempty"`
	ReceivedFromID *int64 `json:"received_from_id,omitempty"`

	// Exchange.
	CurrencyFrom    string           `json:"currency_from,omitempty"`
	CurrencyTo      string           `json:"currency_to,omitempty"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount,omitempty"`
}

// TargetUser is the nested recipient object. Its keys come either prefixed
// or bare.
type TargetUser struct {
	ID       *int64 `json:"target_user_id,omitempty"`
	Username string `json:"target_username,omitempty"`

	BareID       *int64 `json:"id,omitempty"`
	BareUsername string `json:"username,omitempty"`
}

func (u *TargetUser) counterparty() *domain.Counterparty {
	id, username := u.ID, u.Username
	if id == nil {
		id = u.BareID
	}
	if username == "" {
		username = u.BareUsername
	}
	if id == nil && username == "" {
		return nil
	}
	cp := &domain.Counterparty{Username: username}
	if id != nil {
		cp.AccountID = *id
	}
	return cp
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses the timestamp formats the service emits. Values
// without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Decode converts r into a domain transaction. Any record that cannot be
// placed in the ledger is malformed.
func Decode(r Record) (domain.Transaction, error) {
	typ, ok := domain.ParseTransactionType(r.Type)
	if !ok {
		return domain.Transaction{}, malformed(r.ID, "unknown type %q", r.Type)
	}
	status, ok := domain.ParseTransactionStatus(r.Status)
	if !ok {
		return domain.Transaction{}, malformed(r.ID, "unknown status %q", r.Status)
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return domain.Transaction{}, malformed(r.ID, "%v", err)
	}

	currency := domain.ParseCurrency(r.Currency)
	if currency == "" && typ == domain.TransactionTypeExchange {
		currency = domain.ParseCurrency(r.CurrencyFrom)
	}

	symbol := r.CurrencySymbol
	if symbol == "" {
		symbol = r.Symbol
	}
	if symbol == "" {
		symbol = currency.Symbol()
	}

	tx := domain.Transaction{
		ID:               r.ID,
		Status:           status,
		Amount:           r.Amount,
		Currency:         currency,
		Symbol:           symbol,
		Timestamp:        ts,
		ResultingBalance: r.Balance,
	}

	switch typ {
	case domain.TransactionTypeTopUp:
		tx.Details = domain.TopUp{}
	case domain.TransactionTypeTransfer:
		tx.Details = domain.Transfer{
			Recipient: r.recipient(),
			Sender:    r.sender(),
		}
	case domain.TransactionTypeExchange:
		tx.Details = domain.Exchange{
			From:            domain.ParseCurrency(r.CurrencyFrom),
			To:              domain.ParseCurrency(r.CurrencyTo),
			ConvertedAmount: r.ConvertedAmount,
		}
	}

	return tx, nil
}

// DecodeAll decodes every record or none.
func DecodeAll(records []Record) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(records))
	for _, r := range records {
		tx, err := Decode(r)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r Record) recipient() *domain.Counterparty {
	if r.TargetUser != nil {
		if cp := r.TargetUser.counterparty(); cp != nil {
			return cp
		}
	}
	if r.TargetUserID != nil || r.TargetUsername != "" {
		cp := &domain.Counterparty{Username: r.TargetUsername}
		if r.TargetUserID != nil {
			cp.AccountID = *r.TargetUserID
		}
		return cp
	}
	return nil
}

func (r Record) sender() *domain.Counterparty {
	if r.ReceivedFromID == nil && r.ReceivedFrom == "" {
		return nil
	}
	cp := &domain.Counterparty{Username: r.ReceivedFrom}
	if r.ReceivedFromID != nil {
		cp.AccountID = *r.ReceivedFromID
	}
	return cp
}

func malformed(id int64, format string, args ...any) error {
	return apperror.ErrMalformed(fmt.Errorf("transaction %d: "+format, append([]any{id}, args...)...))
}

// Encode is the inverse of Decode. It writes the nested target_user form and
// RFC 3339 timestamps.
func Encode(tx domain.Transaction) Record {
	r := Record{
		ID:             tx.ID,
		Type:           string(tx.Type()),
		Status:         string(tx.Status),
		Amount:         tx.Amount,
		Currency:       string(tx.Currency),
		CurrencySymbol: tx.Symbol,
		Timestamp:      tx.Timestamp.UTC().Format(time.RFC3339Nano),
		Balance:        tx.ResultingBalance,
	}

	switch d := tx.Details.(type) {
	case domain.Transfer:
		if d.Recipient != nil {
			id := d.Recipient.AccountID
			r.TargetUser = &TargetUser{ID: &id, Username: d.Recipient.Username}
		}
		if d.Sender != nil {
			id := d.Sender.AccountID
			r.ReceivedFromID = &id
			r.ReceivedFrom = d.Sender.Username
		}
	case domain.Exchange:
		r.CurrencyFrom = string(d.From)
		r.CurrencyTo = string(d.To)
		r.ConvertedAmount = d.ConvertedAmount
	}
	return r
}
