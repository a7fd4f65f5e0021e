package lotfolio

import (
	"fmt"
	"slices"
)

// shortTermDays is the holding period, in days, under which an open lot is
// classified as short-term.
const shortTermDays = 365

// Lot is one matched buy/sell pairing (or sell/buy, for a short). The open
// side records the acquisition, the close side the disposal. An open long lot
// has a zero close side; an open short lot has a zero open side, the short
// sale being recorded on the close side until a buy covers it.
type Lot struct {
	Symbol string `json:"symbol"` // owning symbol, set by the composer

	OpenDate Date     `json:"open_date,omitzero"`
	Quantity Quantity `json:"quantity"`
	Price    Amount   `json:"price"`
	Total    Amount   `json:"total"` // quantity×price plus apportioned fees

	CloseDate      Date     `json:"close_date,omitzero"`
	ClosedQuantity Quantity `json:"closed_quantity"`
	ClosePrice     Amount   `json:"close_price"`
	ClosedTotal    Amount   `json:"closed_total"`
}

// Residual is the still-open remainder of the lot, signed: positive for an
// open long, negative for an open short, zero (within tolerance) for a
// closed lot.
func (l Lot) Residual() Quantity { return l.Quantity.Sub(l.ClosedQuantity) }

// RealizedPL is the profit or loss locked in by the closed part of the lot.
func (l Lot) RealizedPL() Amount { return l.ClosedTotal.Sub(l.Total) }

// earliest returns the earlier of the lot's open and close dates, ignoring
// the side that is still open. Lot lists are kept sorted by this date.
func (l Lot) earliest() Date { return minDate(l.OpenDate, l.CloseDate) }

func (l Lot) String() string {
	return fmt.Sprintf("lot %s: open %s @ %s on %s (%s), closed %s @ %s on %s (%s)",
		l.Symbol,
		l.Quantity, l.Price.Plain(), l.OpenDate, l.Total.Plain(),
		l.ClosedQuantity, l.ClosePrice.Plain(), l.CloseDate, l.ClosedTotal.Plain())
}

// LotStatus classifies a lot by holding period.
type LotStatus string

const (
	// StatusClosed marks a lot whose residual quantity snaps to zero.
	StatusClosed LotStatus = "Closed"
	// StatusShortTerm marks an open lot held 365 days or less.
	StatusShortTerm LotStatus = "Short"
	// StatusLongTerm marks an open lot held longer than 365 days.
	StatusLongTerm LotStatus = "Long"
)

// Status classifies the lot as of the given date. Closed lots are terminal
// regardless of duration.
func (l Lot) Status(asOf Date) LotStatus {
	if l.Residual().Negligible() {
		return StatusClosed
	}
	opened := l.OpenDate
	if opened.IsZero() {
		opened = l.CloseDate // short lots open on their sale side
	}
	if asOf.DaysSince(opened) <= shortTermDays {
		return StatusShortTerm
	}
	return StatusLongTerm
}

// halfLot is one side of a future Lot: an open position waiting for the
// opposite transaction. side is TxBuy for open longs and TxSell for open
// shorts.
type halfLot struct {
	side     TxType
	on       Date
	quantity Quantity
	price    Amount
	total    Amount // quantity×price plus the fee share carried at opening
}

// close pairs the whole half-lot with the given closing side.
func (h *halfLot) close(on Date, price Amount, fees Amount) Lot {
	return h.toLot(on, h.quantity, price, fees)
}

// partialClose splits the half-lot: a portion of the given quantity is closed
// against the transaction, the remainder stays open in place. The open
// total is divided pro-rata to the quantity taken.
func (h *halfLot) partialClose(on Date, quantity Quantity, price Amount, fees Amount) Lot {
	splitTotal := h.total.Mul(quantity).DivQ(h.quantity)
	split := halfLot{side: h.side, on: h.on, quantity: quantity, price: h.price, total: splitTotal}
	h.total = h.total.Sub(splitTotal)
	h.quantity = h.quantity.Sub(quantity)
	return split.close(on, price, fees)
}

// toLot pairs the half-lot with a closing side. For a long the half-lot is
// the open side; for a short it is the close side and the closing buy
// becomes the open side.
func (h *halfLot) toLot(on Date, quantity Quantity, price Amount, fees Amount) Lot {
	if h.side == TxBuy {
		return Lot{
			OpenDate: h.on, Quantity: h.quantity, Price: h.price, Total: h.total,
			CloseDate: on, ClosedQuantity: quantity, ClosePrice: price, ClosedTotal: price.Mul(quantity).Add(fees),
		}
	}
	return Lot{
		OpenDate: on, Quantity: quantity, Price: price, Total: price.Mul(quantity).Add(fees),
		CloseDate: h.on, ClosedQuantity: h.quantity, ClosePrice: h.price, ClosedTotal: h.total,
	}
}

// LotBuilder is the per-symbol FIFO matcher. It consumes BUY and SELL
// transactions in chronological order and maintains the open long and short
// queues, oldest first, emitting closed lots as positions are reduced.
//
// A builder is scoped to a single reconstruction: it is created empty, fed
// every trade of one symbol, and discarded. No state survives across calls.
type LotBuilder struct {
	longs  []*halfLot
	shorts []*halfLot
	closed []Lot // sorted by earliest date
}

// NewLotBuilder creates an empty matcher.
func NewLotBuilder() *LotBuilder {
	return &LotBuilder{}
}

// Add matches one BUY or SELL transaction against the open queues.
//
// A buy first covers open shorts, oldest first; a sell consumes open longs
// the same way. A lot fully covered by the remaining quantity is closed
// whole; the last lot touched may instead be split, its open remainder
// keeping its place at the head of the queue. Whatever quantity is left
// opens a new half-lot on the transaction's own side.
//
// The fee (total minus quantity×price) is apportioned pro-rata to the
// quantity taken from each lot, the remainder carrying forward to the next
// lot consumed by the same transaction.
func (b *LotBuilder) Add(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if !tx.Type.Trades() {
		return fmt.Errorf("transaction %s is not a trade", tx.Type)
	}

	fee := tx.Total.Sub(tx.Price.Mul(tx.Quantity))
	quantity := tx.Quantity
	poll, push := &b.shorts, &b.longs
	if tx.Type == TxSell {
		poll, push = &b.longs, &b.shorts
	}

	for quantity.IsPositive() && len(*poll) > 0 {
		oldest := (*poll)[0]
		if quantity.Sub(oldest.quantity).GreaterThan(Q(quantityTolerance).Neg()) {
			// The remaining quantity covers this lot entirely.
			feeShare := fee.Mul(oldest.quantity).DivQ(quantity)
			fee = fee.Sub(feeShare)
			quantity = quantity.Sub(oldest.quantity)
			*poll = (*poll)[1:]
			b.insertClosed(oldest.close(tx.Date, tx.Price, feeShare))
		} else {
			// Split: the open remainder stays at the head of the queue,
			// and the rest of the fee goes to the closed portion.
			b.insertClosed(oldest.partialClose(tx.Date, quantity, tx.Price, fee))
			quantity, fee = Q(0), A(0)
		}
	}

	if quantity.GreaterThan(Q(quantityTolerance)) {
		*push = append(*push, &halfLot{
			side:     tx.Type,
			on:       tx.Date,
			quantity: quantity,
			price:    tx.Price,
			total:    tx.Price.Mul(quantity).Add(fee),
		})
	}
	return nil
}

// insertClosed keeps the closed list sorted by earliest date, later arrivals
// after earlier ones on ties.
func (b *LotBuilder) insertClosed(l Lot) {
	at, _ := slices.BinarySearchFunc(b.closed, l, func(a, x Lot) int {
		if c := a.earliest().Compare(x.earliest()); c != 0 {
			return c
		}
		return -1 // never "found": equal dates insert after existing entries
	})
	b.closed = slices.Insert(b.closed, at, l)
}

// Lots returns the complete lot list current as of the last transaction
// processed: closed lots, then open longs, then open shorts, the whole list
// sorted by earliest date with that batch order preserved on ties. This
// ordering is what downstream holding-period classification relies on.
func (b *LotBuilder) Lots() []Lot {
	out := make([]Lot, 0, len(b.closed)+len(b.longs)+len(b.shorts))
	out = append(out, b.closed...)
	for _, h := range b.longs {
		out = append(out, h.toLot(Date{}, Q(0), A(0), A(0)))
	}
	for _, h := range b.shorts {
		out = append(out, h.toLot(Date{}, Q(0), A(0), A(0)))
	}
	slices.SortStableFunc(out, func(a, x Lot) int { return a.earliest().Compare(x.earliest()) })
	return out
}
