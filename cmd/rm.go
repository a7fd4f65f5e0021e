package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/shafron/lotfolio"
)

// rmCmd holds the flags for the 'rm' subcommand.
type rmCmd struct {
	portfolio string
	id        int64
	all       bool
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete transactions and rebuild positions" }
func (*rmCmd) Usage() string {
	return `lf rm -id <id> [-p <portfolio>]
lf rm -all [-p <portfolio>]

  Deletes one transaction (or, with -all, every transaction of the
  portfolio) and forces a full reconstruction. Transactions can be removed
  out of chronological order; the rebuild always replays the complete
  remaining set.

`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio the transaction belongs to")
	f.Int64Var(&c.id, "id", 0, "Id of the transaction to delete")
	f.BoolVar(&c.all, "all", false, "Delete every transaction of the portfolio")
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.all && c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: either -id or -all is required")
		return subcommands.ExitUsageError
	}

	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if c.all {
		err = db.DeleteTransactions(ctx, c.portfolio)
	} else {
		err = db.DeleteTransaction(ctx, c.portfolio, c.id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := lotfolio.NewRebuilder(db, Logger()).Rebuild(ctx, c.portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error rebuilding positions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
