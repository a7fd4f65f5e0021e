// Package cmd implements the CLI application to manage portfolios, record
// transactions and inspect reconstructed positions and lots.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/shafron/lotfolio/store"
)

// Commands lists every subcommand. A main package registers them all and
// executes the user-selected one.
var Commands = []subcommands.Command{
	&addCmd{},
	&rmCmd{},
	&rebuildCmd{},
	&positionsCmd{},
	&lotsCmd{},
	&historyCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storePath = flag.String("store", "lotfolio.db", "Path to the portfolio database")
var verbose = flag.Bool("v", false, "Enable debug logging")

// Logger builds the application logger, console-formatted on stderr.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// OpenStore opens the application database.
func OpenStore() (*store.Store, error) {
	return store.Open(*storePath, Logger())
}

// printMarkdown renders a markdown report for the terminal, falling back to
// the raw markdown when the renderer cannot be built.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
