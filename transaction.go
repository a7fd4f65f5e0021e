package lotfolio

import (
	"errors"
	"fmt"
	"slices"
)

// CashSymbol is the reserved symbol of the cash position. Deposits,
// withdrawals and adjustments move this balance; it is never lot-matched.
const CashSymbol = "*CASH"

// TxType identifies one of the five recognized transaction kinds. The engine
// matches on it exhaustively and never coerces an unrecognized value.
type TxType string

const (
	TxBuy      TxType = "BUY"
	TxSell     TxType = "SELL"
	TxDeposit  TxType = "DEPOSIT"
	TxWithdraw TxType = "WITHDRAW"
	TxAdjust   TxType = "ADJUST"
)

// ErrUnknownTransactionType reports a transaction type outside the recognized set.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// ParseTxType parses a transaction type string, rejecting anything outside
// the recognized set.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(s); t {
	case TxBuy, TxSell, TxDeposit, TxWithdraw, TxAdjust:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
	}
}

// Trades reports whether the transaction enters the lot matcher. The other
// kinds are cash ledger operations only.
func (t TxType) Trades() bool { return t == TxBuy || t == TxSell }

// Transaction is one immutable record of the transaction log. Total is the
// signed cash effect already net of commission; the engine never recomputes
// commission. Transactions replay in (Date, Seq) order: Seq is the insertion
// sequence, required because several transactions can share a date and FIFO
// order must be stable.
type Transaction struct {
	ID           int64    `json:"id,omitempty"`
	Seq          int64    `json:"seq"`
	Type         TxType   `json:"type"`
	Date         Date     `json:"date"`
	Symbol       string   `json:"symbol"`
	Quantity     Quantity `json:"quantity"`
	Price        Amount   `json:"price"`
	Total        Amount   `json:"total"`
	LinkedSymbol string   `json:"linked_symbol,omitempty"`
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s @ %s on %s", t.Type, t.Quantity, t.Symbol, t.Price.Plain(), t.Date)
}

// Validate checks the basic shape of the record before it is allowed into a
// replay. It rejects malformed input; it does not judge business validity
// beyond type semantics.
func (t Transaction) Validate() error {
	if _, err := ParseTxType(string(t.Type)); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s has no date", t.Type)
	}
	if t.Quantity.IsNegative() {
		return fmt.Errorf("transaction %s on %s has negative quantity %s", t.Type, t.Date, t.Quantity)
	}
	if t.Type.Trades() {
		if t.Symbol == "" {
			return fmt.Errorf("%s transaction on %s has no symbol", t.Type, t.Date)
		}
		if t.Symbol == CashSymbol {
			return fmt.Errorf("%s transaction on %s targets the cash symbol", t.Type, t.Date)
		}
	}
	return nil
}

// SortTransactions orders transactions chronologically, by date then by
// insertion sequence. Collaborators usually hand them over newest first; the
// replay always re-sorts ascending.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
}
