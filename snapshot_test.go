package lotfolio

import (
	"reflect"
	"testing"
)

// scenario builds the walk used across composer tests: a deposit, a buy, a
// partial sell and a linked cash adjustment, one per day.
func scenario() []Transaction {
	return []Transaction{
		{Type: TxDeposit, Date: MustParseDate("2025-01-01"), Seq: 1, Symbol: CashSymbol, Total: A(1000)},
		{Type: TxBuy, Date: MustParseDate("2025-01-02"), Seq: 2, Symbol: "XYZ", Quantity: Q(10), Price: A(100), Total: A(1000)},
		{Type: TxSell, Date: MustParseDate("2025-01-03"), Seq: 3, Symbol: "XYZ", Quantity: Q(4), Price: A(150), Total: A(600)},
		{Type: TxAdjust, Date: MustParseDate("2025-01-04"), Seq: 4, Symbol: CashSymbol, Total: A(25), LinkedSymbol: "XYZ"},
	}
}

// assertPosition checks the numeric fields of one snapshot row.
func assertPosition(t *testing.T, p Position, symbol, asOf string, quantity Quantity, costPrice, realized Amount) {
	t.Helper()
	if p.Symbol != symbol || p.AsOf != MustParseDate(asOf) {
		t.Errorf("position is %s on %s, want %s on %s", p.Symbol, p.AsOf, symbol, asOf)
	}
	if !p.Quantity.Equal(quantity) {
		t.Errorf("%s on %s: quantity = %s, want %s", symbol, asOf, p.Quantity, quantity)
	}
	if !p.CostPrice.Equal(costPrice) {
		t.Errorf("%s on %s: cost price = %s, want %s", symbol, asOf, p.CostPrice.Plain(), costPrice.Plain())
	}
	if !p.RealizedPL.Equal(realized) {
		t.Errorf("%s on %s: realized pl = %s, want %s", symbol, asOf, p.RealizedPL.Plain(), realized.Plain())
	}
}

func TestBuildPositions_Walk(t *testing.T) {
	positions, lots, err := BuildPositions(scenario())
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}

	// One cash row per date, plus one XYZ row per date from its first trade on.
	if len(positions) != 7 {
		t.Fatalf("BuildPositions() returned %d positions, want 7", len(positions))
	}

	// Day 1: the deposit.
	assertPosition(t, positions[0], CashSymbol, "2025-01-01", Q(1000), A(1), A(0))

	// Day 2: the buy drains cash into 10 XYZ at 100.
	assertPosition(t, positions[1], CashSymbol, "2025-01-02", Q(0), A(1), A(0))
	assertPosition(t, positions[2], "XYZ", "2025-01-02", Q(10), A(100), A(0))
	if !positions[2].CostBasis.Equal(A(1000)) {
		t.Errorf("XYZ day-2 cost basis = %s, want 1000", positions[2].CostBasis.Plain())
	}

	// Day 3: the partial sell; FIFO residual keeps its cost price.
	assertPosition(t, positions[3], CashSymbol, "2025-01-03", Q(600), A(1), A(0))
	assertPosition(t, positions[4], "XYZ", "2025-01-03", Q(6), A(100), A(200))
	if !positions[4].CostBasis.Equal(A(600)) {
		t.Errorf("XYZ day-3 cost basis = %s, want 600", positions[4].CostBasis.Plain())
	}

	// Day 4: the adjustment feeds cash quantity and realized P/L, and
	// leaves the XYZ lot queues untouched.
	assertPosition(t, positions[5], CashSymbol, "2025-01-04", Q(625), A(1), A(25))
	assertPosition(t, positions[6], "XYZ", "2025-01-04", Q(6), A(100), A(200))

	// Lot detail backs the latest date only: the closed 4-share block and
	// the open 6-share remainder.
	if len(lots) != 2 {
		t.Fatalf("BuildPositions() returned %d lots, want 2", len(lots))
	}
	if lots[0].Symbol != "XYZ" || lots[1].Symbol != "XYZ" {
		t.Errorf("lots carry symbols %q, %q, want XYZ", lots[0].Symbol, lots[1].Symbol)
	}
	assertLot(t, 0, lots[0], Lot{
		Symbol:   "XYZ",
		OpenDate: MustParseDate("2025-01-02"), Quantity: Q(4), Price: A(100), Total: A(400),
		CloseDate: MustParseDate("2025-01-03"), ClosedQuantity: Q(4), ClosePrice: A(150), ClosedTotal: A(600),
	})
	assertLot(t, 1, lots[1], Lot{
		Symbol:   "XYZ",
		OpenDate: MustParseDate("2025-01-02"), Quantity: Q(6), Price: A(100), Total: A(600),
	})
}

func TestBuildPositions_Empty(t *testing.T) {
	positions, lots, err := BuildPositions(nil)
	if err != nil {
		t.Fatalf("BuildPositions(nil) error = %v", err)
	}
	if positions != nil || lots != nil {
		t.Errorf("BuildPositions(nil) = %v, %v, want nils", positions, lots)
	}
}

func TestBuildPositions_MembershipIsCumulative(t *testing.T) {
	// A symbol once traded keeps appearing on later dates, even when only
	// cash moves.
	txs := []Transaction{
		{Type: TxBuy, Date: MustParseDate("2025-01-02"), Seq: 1, Symbol: "XYZ", Quantity: Q(10), Price: A(100), Total: A(1000)},
		{Type: TxDeposit, Date: MustParseDate("2025-03-01"), Seq: 2, Total: A(500)},
	}
	positions, _, err := BuildPositions(txs)
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	if len(positions) != 4 {
		t.Fatalf("BuildPositions() returned %d positions, want 4", len(positions))
	}
	assertPosition(t, positions[3], "XYZ", "2025-03-01", Q(10), A(100), A(0))
}

func TestBuildPositions_UnsortedInput(t *testing.T) {
	// Collaborators hand transactions newest first; the replay re-sorts.
	txs := scenario()
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	positions, _, err := BuildPositions(txs)
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	assertPosition(t, positions[6], "XYZ", "2025-01-04", Q(6), A(100), A(200))
}

func TestBuildPositions_MalformedInputAborts(t *testing.T) {
	txs := scenario()
	txs = append(txs, Transaction{Type: "DIVIDEND", Date: MustParseDate("2025-01-05"), Symbol: "XYZ"})

	positions, lots, err := BuildPositions(txs)
	if err == nil {
		t.Fatal("BuildPositions() expected an error for an unrecognized type")
	}
	if positions != nil || lots != nil {
		t.Error("a failed replay must not return partial results")
	}
}

func TestBuildPositions_ToleranceSnapping(t *testing.T) {
	// A sell within tolerance of the full holding closes the lot exactly:
	// the position quantity persists as 0, and the lot is Closed.
	txs := []Transaction{
		{Type: TxBuy, Date: MustParseDate("2025-01-02"), Seq: 1, Symbol: "XYZ", Quantity: Q(10), Price: A(100), Total: A(1000)},
		{Type: TxSell, Date: MustParseDate("2025-01-03"), Seq: 2, Symbol: "XYZ", Quantity: Q(9.9999999999), Price: A(100), Total: A(1000)},
	}
	positions, lots, err := BuildPositions(txs)
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	last := positions[len(positions)-1]
	if last.Symbol != "XYZ" || !last.Quantity.IsZero() {
		t.Errorf("XYZ quantity = %s, want exactly 0", last.Quantity)
	}
	if len(lots) != 1 {
		t.Fatalf("BuildPositions() returned %d lots, want 1", len(lots))
	}
	if got := lots[0].Status(MustParseDate("2025-02-01")); got != StatusClosed {
		t.Errorf("lot status = %q, want %q", got, StatusClosed)
	}
}

func TestBuildPositions_NegligibleBuyLeavesNoLot(t *testing.T) {
	txs := []Transaction{
		{Type: TxBuy, Date: MustParseDate("2025-01-02"), Seq: 1, Symbol: "XYZ", Quantity: Q(1e-9), Price: A(100), Total: A(0.0000001)},
	}
	positions, lots, err := BuildPositions(txs)
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	last := positions[len(positions)-1]
	if !last.Quantity.IsZero() {
		t.Errorf("XYZ quantity = %s, want exactly 0", last.Quantity)
	}
	if len(lots) != 0 {
		t.Errorf("BuildPositions() returned %d lots, want 0", len(lots))
	}
}

func TestBuildPositions_IdempotentReplay(t *testing.T) {
	first, firstLots, err := BuildPositions(scenario())
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	second, secondLots, err := BuildPositions(scenario())
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("replaying an unchanged transaction set produced different positions")
	}
	if !reflect.DeepEqual(firstLots, secondLots) {
		t.Error("replaying an unchanged transaction set produced different lots")
	}
}

func TestBuildPositions_CashBasisConservation(t *testing.T) {
	// Buys move value from cash into cost basis by the same total, and
	// sells move it back plus realized P/L: at every date,
	// cash + Σ cost basis == deposits + Σ realized P/L.
	txs := []Transaction{
		{Type: TxDeposit, Date: MustParseDate("2025-01-01"), Seq: 1, Total: A(10000)},
		{Type: TxBuy, Date: MustParseDate("2025-01-02"), Seq: 2, Symbol: "AAA", Quantity: Q(10), Price: A(50), Total: A(500)},
		{Type: TxBuy, Date: MustParseDate("2025-01-03"), Seq: 3, Symbol: "BBB", Quantity: Q(20), Price: A(10), Total: A(200)},
		{Type: TxSell, Date: MustParseDate("2025-01-04"), Seq: 4, Symbol: "AAA", Quantity: Q(5), Price: A(60), Total: A(300)},
	}
	positions, _, err := BuildPositions(txs)
	if err != nil {
		t.Fatalf("BuildPositions() error = %v", err)
	}

	deposits := A(10000)
	byDate := make(map[Date][]Position)
	for _, p := range positions {
		byDate[p.AsOf] = append(byDate[p.AsOf], p)
	}
	for on, day := range byDate {
		total, realized := A(0), A(0)
		for _, p := range day {
			total = total.Add(p.CostBasis)
			if p.Symbol != CashSymbol {
				realized = realized.Add(p.RealizedPL)
			}
		}
		if !total.Equal(deposits.Add(realized)) {
			t.Errorf("on %s: cash + cost basis = %s, want deposits + realized = %s",
				on, total.Plain(), deposits.Add(realized).Plain())
		}
	}

	// And the final cash balance is the deposit minus net trade flow.
	last := byDate[MustParseDate("2025-01-04")]
	if !last[0].Quantity.Equal(Q(10000 - 500 - 200 + 300)) {
		t.Errorf("final cash = %s, want 9600", last[0].Quantity)
	}
}
