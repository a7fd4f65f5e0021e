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

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	portfolio string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the latest position snapshot" }
func (*positionsCmd) Usage() string {
	return `lf positions [-p <portfolio>]

  Displays every symbol's position as of the most recent snapshot date:
  quantity, average cost price, cost basis and realized P/L. Rebuilds
  lazily when the portfolio has transactions but was never reconstructed.

`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio to display")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(render.PositionsMarkdown(c.portfolio, positions))
	return subcommands.ExitSuccess
}
