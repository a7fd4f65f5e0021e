// Package render turns position snapshots and lot details into markdown
// reports for the CLI.
package render

import (
	"fmt"
	"strings"

	"github.com/shafron/lotfolio"
)

// PositionsMarkdown renders the latest snapshot of a portfolio as a table.
func PositionsMarkdown(portfolio string, positions []lotfolio.Position) string {
	var b strings.Builder
	if len(positions) == 0 {
		fmt.Fprintf(&b, "# Positions: %s\n\nNo positions. Record transactions and rebuild.\n", portfolio)
		return b.String()
	}
	fmt.Fprintf(&b, "# Positions: %s (as of %s)\n\n", portfolio, positions[0].AsOf)
	fmt.Fprintln(&b, "| Symbol | Quantity | Cost Price | Cost Basis | Realized P/L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			p.Symbol, p.Quantity, p.CostPrice, p.CostBasis, p.RealizedPL.SignedString())
	}
	return b.String()
}

// HistoryMarkdown renders the full date series of one symbol, oldest first.
func HistoryMarkdown(portfolio, symbol string, positions []lotfolio.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# History: %s in %s\n\n", symbol, portfolio)
	if len(positions) == 0 {
		fmt.Fprintln(&b, "No snapshots for this symbol.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Quantity | Cost Price | Cost Basis | Realized P/L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			p.AsOf, p.Quantity, p.CostPrice, p.CostBasis, p.RealizedPL.SignedString())
	}
	return b.String()
}

// LotsMarkdown renders the lot detail behind the latest snapshot, including
// the holding-period status of each lot as of the given date.
func LotsMarkdown(symbol string, lots []lotfolio.Lot, asOf lotfolio.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lots: %s\n\n", symbol)
	if len(lots) == 0 {
		fmt.Fprintln(&b, "No lots for this symbol.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Opened | Quantity | Price | Closed | Quantity | Price | Realized P/L | Status |")
	fmt.Fprintln(&b, "|:---|---:|---:|:---|---:|---:|---:|:---|")
	for _, l := range lots {
		status := l.Status(asOf)
		realized := "-" // an open lot has nothing realized yet
		if status == lotfolio.StatusClosed {
			realized = l.RealizedPL().SignedString()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			dateOrDash(l.OpenDate), l.Quantity, l.Price,
			dateOrDash(l.CloseDate), l.ClosedQuantity, l.ClosePrice,
			realized, status)
	}
	return b.String()
}

func dateOrDash(d lotfolio.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
