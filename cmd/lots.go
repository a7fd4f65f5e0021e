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

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	portfolio string
	symbol    string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "display the lot detail behind the latest snapshot" }
func (*lotsCmd) Usage() string {
	return `lf lots -s <symbol> [-p <portfolio>]

  Displays the tax lots of one symbol as of the latest snapshot: when each
  block was opened and closed, at what price, and its holding-period status
  (Closed, Short or Long).

`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio to display")
	f.StringVar(&c.symbol, "s", "", "Symbol whose lots to display")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <symbol> is required")
		return subcommands.ExitUsageError
	}

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

	positions, err := db.LatestPositions(ctx, c.portfolio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading positions: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, p := range positions {
		if p.Symbol != c.symbol {
			continue
		}
		lots, err := db.Lots(ctx, p.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading lots: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(render.LotsMarkdown(c.symbol, lots, lotfolio.Today()))
		return subcommands.ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "No position for %q in %q\n", c.symbol, c.portfolio)
	return subcommands.ExitFailure
}
