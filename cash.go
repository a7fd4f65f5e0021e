package lotfolio

import "fmt"

// cashLedger is the running balance of the reserved cash symbol. Cash is
// never lot-matched: the balance and the realized-P/L accumulator carry
// forward from date to date, a pure running total.
type cashLedger struct {
	balance  Amount
	realized Amount
}

// apply folds one transaction into the balance. Every recognized kind has a
// cash side; an unrecognized kind is a malformed input, never coerced.
//
// ADJUST is how dividends, interest and fees not tied to a specific lot
// enter realized P/L directly. Its LinkedSymbol only attributes the
// adjustment to a security for reporting and plays no part here.
func (c *cashLedger) apply(tx Transaction) error {
	switch tx.Type {
	case TxDeposit, TxSell:
		c.balance = c.balance.Add(tx.Total)
	case TxWithdraw, TxBuy:
		c.balance = c.balance.Sub(tx.Total)
	case TxAdjust:
		c.balance = c.balance.Add(tx.Total)
		c.realized = c.realized.Add(tx.Total)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransactionType, tx.Type)
	}
	return nil
}

// position materializes the cash balance as a Position on the given date.
// Cash units cost exactly one, and the cost basis is the balance itself.
func (c *cashLedger) position(on Date) Position {
	return Position{
		Symbol:     CashSymbol,
		AsOf:       on,
		Quantity:   c.balance.Units().Snap(),
		CostPrice:  A(1),
		CostBasis:  c.balance,
		RealizedPL: c.realized,
	}
}
