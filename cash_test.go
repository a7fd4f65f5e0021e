package lotfolio

import (
	"errors"
	"testing"
)

func TestCashLedger(t *testing.T) {
	var ledger cashLedger
	apply := func(typ TxType, total float64) {
		t.Helper()
		if err := ledger.apply(Transaction{Type: typ, Date: MustParseDate("2025-01-01"), Total: A(total)}); err != nil {
			t.Fatalf("apply(%s, %v) error = %v", typ, total, err)
		}
	}

	apply(TxDeposit, 1000)
	apply(TxBuy, 400)
	apply(TxSell, 150)
	apply(TxWithdraw, 100)
	apply(TxAdjust, 25)

	p := ledger.position(MustParseDate("2025-01-01"))
	if !p.Quantity.Equal(Q(675)) {
		t.Errorf("balance = %s, want 675", p.Quantity)
	}
	if !p.RealizedPL.Equal(A(25)) {
		t.Errorf("realized = %s, want 25 (adjustments only)", p.RealizedPL.Plain())
	}
	if p.Symbol != CashSymbol || !p.CostPrice.Equal(A(1)) {
		t.Errorf("cash position = %s at %s, want %s at 1", p.Symbol, p.CostPrice.Plain(), CashSymbol)
	}
	if !p.CostBasis.Equal(A(675)) {
		t.Errorf("cash cost basis = %s, want the balance", p.CostBasis.Plain())
	}
}

func TestCashLedger_NegativeBalance(t *testing.T) {
	// Overdraft is recorded, not rejected: the log is authoritative.
	var ledger cashLedger
	if err := ledger.apply(Transaction{Type: TxBuy, Date: MustParseDate("2025-01-01"), Symbol: "XYZ", Quantity: Q(1), Price: A(100), Total: A(100)}); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	p := ledger.position(MustParseDate("2025-01-01"))
	if !p.Quantity.Equal(Q(-100)) {
		t.Errorf("balance = %s, want -100", p.Quantity)
	}
}

func TestCashLedger_UnknownType(t *testing.T) {
	var ledger cashLedger
	err := ledger.apply(Transaction{Type: "SPLIT", Date: MustParseDate("2025-01-01")})
	if !errors.Is(err, ErrUnknownTransactionType) {
		t.Errorf("apply() error = %v, want ErrUnknownTransactionType", err)
	}
}
