package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/shafron/lotfolio"
)

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	portfolio string
	date      string
	txType    string
	symbol    string
	quantity  string
	price     string
	total     string
	linked    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a transaction and rebuild positions" }
func (*addCmd) Usage() string {
	return `lf add -t <type> [-p <portfolio>] [-d <date>] [-s <symbol>] [-q <quantity>] [-price <price>] [-total <total>] [-linked <symbol>]

  Records one transaction (BUY, SELL, DEPOSIT, WITHDRAW or ADJUST) and
  forces a full reconstruction of the portfolio's positions. Total is the
  signed cash effect, net of commission.

Usage Examples:
# Deposit cash, then buy.
$ lf add -t DEPOSIT -total 1000
$ lf add -t BUY -s XYZ -q 10 -price 100 -total 1000

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio the transaction belongs to")
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.txType, "t", "", "Transaction type: BUY, SELL, DEPOSIT, WITHDRAW or ADJUST")
	f.StringVar(&c.symbol, "s", lotfolio.CashSymbol, "Symbol traded (cash operations use the reserved cash symbol)")
	f.StringVar(&c.quantity, "q", "0", "Quantity of shares")
	f.StringVar(&c.price, "price", "0", "Price per share")
	f.StringVar(&c.total, "total", "0", "Signed cash effect, net of commission")
	f.StringVar(&c.linked, "linked", "", "Symbol an ADJUST is attributed to, for reporting")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.transaction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	id, err := db.InsertTransaction(ctx, c.portfolio, tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording transaction: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := lotfolio.NewRebuilder(db, Logger()).Rebuild(ctx, c.portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error rebuilding positions: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded transaction %d: %s\n", id, tx)
	return subcommands.ExitSuccess
}

func (c *addCmd) transaction() (lotfolio.Transaction, error) {
	var tx lotfolio.Transaction
	var err error
	if tx.Type, err = lotfolio.ParseTxType(c.txType); err != nil {
		return tx, err
	}
	if tx.Date, err = lotfolio.ParseDate(c.date); err != nil {
		return tx, err
	}
	if tx.Quantity, err = lotfolio.ParseQuantity(c.quantity); err != nil {
		return tx, fmt.Errorf("invalid quantity %q: %w", c.quantity, err)
	}
	if tx.Price, err = lotfolio.ParseAmount(c.price); err != nil {
		return tx, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	if tx.Total, err = lotfolio.ParseAmount(c.total); err != nil {
		return tx, fmt.Errorf("invalid total %q: %w", c.total, err)
	}
	tx.Symbol = c.symbol
	tx.LinkedSymbol = c.linked
	return tx, tx.Validate()
}
