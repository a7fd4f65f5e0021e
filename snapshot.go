package lotfolio

import (
	"fmt"
	"slices"
)

// Position is the derived snapshot of one symbol on one date.
//
// CostBasis is the total original cost of the currently open lots, and
// RealizedPL the profit locked in by every lot closed up to that date (plus
// direct cash adjustments, for the cash position). A quantity within
// tolerance of zero is snapped to exactly zero.
type Position struct {
	ID         int64    `json:"id,omitempty"`
	Symbol     string   `json:"symbol"`
	AsOf       Date     `json:"as_of_date"`
	Quantity   Quantity `json:"quantity"`
	CostPrice  Amount   `json:"cost_price"`
	CostBasis  Amount   `json:"cost_basis"`
	RealizedPL Amount   `json:"realized_pl"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s of %s on %s @ %s", p.Quantity, p.Symbol, p.AsOf, p.CostPrice.Plain())
}

// BuildPositions replays the whole transaction set and returns the complete
// historical series of Position snapshots, one per symbol per date present
// in the log, plus the lot detail backing the latest date.
//
// The walk is strictly sequential: transactions are sorted by (date,
// insertion sequence), bucketed by date, and each day's trades are fed into
// that symbol's LotBuilder and the cash ledger before the day's snapshot is
// composed. A symbol once traded keeps appearing in every later snapshot,
// even at zero quantity.
//
// Any malformed transaction aborts the whole replay with an error; no
// partial result is returned.
func BuildPositions(transactions []Transaction) ([]Position, []Lot, error) {
	if len(transactions) == 0 {
		return nil, nil, nil
	}

	txs := slices.Clone(transactions)
	SortTransactions(txs)

	// Bucket by date, dates ascending.
	var dates []Date
	byDate := make(map[Date][]Transaction)
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, nil, err
		}
		if _, ok := byDate[tx.Date]; !ok {
			dates = append(dates, tx.Date)
		}
		byDate[tx.Date] = append(byDate[tx.Date], tx)
	}

	builders := make(map[string]*LotBuilder)
	var symbols []string // cumulative membership, kept sorted for deterministic output
	cash := &cashLedger{}

	var positions []Position
	var latestLots []Lot
	for _, on := range dates {
		for _, tx := range byDate[on] {
			if err := cash.apply(tx); err != nil {
				return nil, nil, err
			}
			if !tx.Type.Trades() {
				continue
			}
			builder := builders[tx.Symbol]
			if builder == nil {
				builder = NewLotBuilder()
				builders[tx.Symbol] = builder
				at, _ := slices.BinarySearch(symbols, tx.Symbol)
				symbols = slices.Insert(symbols, at, tx.Symbol)
			}
			if err := builder.Add(tx); err != nil {
				return nil, nil, err
			}
		}

		positions = append(positions, cash.position(on))

		latestLots = latestLots[:0]
		for _, symbol := range symbols {
			lots := builders[symbol].Lots()
			positions = append(positions, composePosition(symbol, on, lots))
			for _, lot := range lots {
				lot.Symbol = symbol
				lot.Quantity = lot.Quantity.Snap()
				lot.ClosedQuantity = lot.ClosedQuantity.Snap()
				latestLots = append(latestLots, lot)
			}
		}
	}

	return positions, latestLots, nil
}

// composePosition aggregates a symbol's lots into its snapshot for one date.
// Open lots (residual quantity above tolerance) contribute quantity, cost
// basis and the quantity-weighted average cost price; closed lots contribute
// realized P/L.
func composePosition(symbol string, on Date, lots []Lot) Position {
	p := Position{Symbol: symbol, AsOf: on}
	for _, lot := range lots {
		quantity := lot.Residual().Snap()
		if !quantity.IsZero() {
			p.CostBasis = p.CostBasis.Add(lot.Total.Sub(lot.ClosedTotal))
			total := p.CostPrice.Mul(p.Quantity).Add(lot.Price.Mul(quantity))
			p.Quantity = p.Quantity.Add(quantity)
			p.CostPrice = total.DivQ(p.Quantity)
		} else {
			p.RealizedPL = p.RealizedPL.Add(lot.RealizedPL())
		}
	}
	p.Quantity = p.Quantity.Snap()
	return p
}
