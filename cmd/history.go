package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/shafron/lotfolio"
	"github.com/shafron/lotfolio/render"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	portfolio string
	symbol    string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the full snapshot series of a symbol" }
func (*historyCmd) Usage() string {
	return `lf history -s <symbol> [-p <portfolio>]

  Displays a symbol's position on every snapshot date, oldest first. Read
  alongside a price history this backs performance charts.

`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio to display")
	f.StringVar(&c.symbol, "s", lotfolio.CashSymbol, "Symbol whose history to display")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := lotfolio.NewRebuilder(db, Logger()).Refresh(ctx, c.portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	positions, err := db.PositionHistory(ctx, c.portfolio, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(render.HistoryMarkdown(c.portfolio, c.symbol, positions))
	return subcommands.ExitSuccess
}
