package ledger

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"wallet-console/internal/core/domain"
)

// Placeholder marks a column that does not apply to a transaction.
const Placeholder = "-"

// DisplayTransaction is one display-ready ledger row.
type DisplayTransaction struct {
	ID           int64
	Type         domain.TransactionType
	TypeLabel    string
	Status       domain.TransactionStatus
	StatusLabel  string
	Currency     domain.Currency
	Amount       string
	Balance      string
	CurrencyFrom string
	CurrencyTo   string
	Destination  string
	Source       string
	Timestamp    time.Time
}

// Normalize turns the raw records of one fetch into display rows. A single
// malformed record fails the whole fetch. The input is not modified.
func Normalize(records []Record) ([]DisplayTransaction, error) {
	txs, err := DecodeAll(records)
	if err != nil {
		return nil, err
	}
	return Project(txs), nil
}

// Project orders txs and maps each to a DisplayTransaction.
func Project(txs []domain.Transaction) []DisplayTransaction {
	ordered := Order(txs)
	rows := make([]DisplayTransaction, len(ordered))
	for i, tx := range ordered {
		rows[i] = Display(tx)
	}
	return rows
}

// Order keeps the service's order when it is already chronological in either
// direction. Otherwise it returns the transactions newest first, ties broken
// by descending id. The result is always a new slice.
func Order(txs []domain.Transaction) []domain.Transaction {
	out := slices.Clone(txs)
	if chronological(out) {
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func chronological(txs []domain.Transaction) bool {
	asc, desc := true, true
	for i := 1; i < len(txs); i++ {
		switch txs[i].Timestamp.Compare(txs[i-1].Timestamp) {
		case 1:
			desc = false
		case -1:
			asc = false
		}
	}
	return asc || desc
}

// Display projects a single transaction.
func Display(tx domain.Transaction) DisplayTransaction {
	row := DisplayTransaction{
		ID:           tx.ID,
		Type:         tx.Type(),
		TypeLabel:    tx.Type().Label(),
		Status:       tx.Status,
		StatusLabel:  tx.Status.Label(),
		Currency:     tx.Currency,
		Amount:       domain.FormatAmount(tx.Symbol, tx.Amount),
		Balance:      Placeholder,
		CurrencyFrom: Placeholder,
		CurrencyTo:   Placeholder,
		Destination:  Placeholder,
		Source:       Placeholder,
		Timestamp:    tx.Timestamp,
	}
	if tx.ResultingBalance != nil {
		row.Balance = domain.FormatAmount(tx.Symbol, *tx.ResultingBalance)
	}

	switch d := tx.Details.(type) {
	case domain.Transfer:
		row.Destination = counterpartyLabel(d.Recipient)
		if tx.Status == domain.TransactionStatusCredited {
			row.Source = counterpartyLabel(d.Sender)
		}
	case domain.Exchange:
		row.CurrencyFrom = orPlaceholder(string(d.From))
		row.CurrencyTo = orPlaceholder(string(d.To))
		if d.ConvertedAmount != nil {
			row.Destination = d.ConvertedAmount.StringFixed(2)
		}
	}

	return row
}

func counterpartyLabel(cp *domain.Counterparty) string {
	switch {
	case cp == nil:
		return Placeholder
	case cp.Username != "":
		return cp.Username
	case cp.AccountID != 0:
		return strconv.FormatInt(cp.AccountID, 10)
	default:
		return Placeholder
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
