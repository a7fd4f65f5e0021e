package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/shafron/lotfolio"
)

// rebuildCmd holds the flags for the 'rebuild' subcommand.
type rebuildCmd struct {
	portfolio string
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "force a full position reconstruction" }
func (*rebuildCmd) Usage() string {
	return `lf rebuild [-p <portfolio>]

  Discards every derived position and lot row of the portfolio and replays
  the complete transaction log from scratch.

`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio to rebuild")
}

func (c *rebuildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := lotfolio.NewRebuilder(db, Logger()).Rebuild(ctx, c.portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error rebuilding positions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Rebuilt positions for %q\n", c.portfolio)
	return subcommands.ExitSuccess
}
