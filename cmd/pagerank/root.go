package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagerank/internal/config"
)

// ErrUsage is returned when the root command gets the wrong number of arguments.
var ErrUsage = errors.New("Usage: pagerank [flags] CORPUS") //nolint:staticcheck // printed verbatim

// NewRootCmd creates the root command for pagerank.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagerank [flags] CORPUS",
		Short: "Rank the pages of an HTML corpus",
		Long: `pagerank computes the PageRank of every page in CORPUS, a directory of
.html files. Links between the files form the link graph; links to other
sites, self links and links to files outside the corpus are ignored.

Two estimators run on the same graph:
- Sampling follows a random surfer for --samples steps and counts visits
- Iteration applies the PageRank formula until no rank moves by more than --epsilon

Examples:
  # Rank a corpus with the defaults
  pagerank corpus0

  # Reproducible sampling with more samples, split across 4 walkers
  pagerank -n 100000 --seed 42 -w 4 corpus0

  # Cross-check the iterative result against an independent implementation
  pagerank --verify corpus0

  # Markdown report written to a file, run saved to the history database
  pagerank -m -o report.md --save corpus0`,
		Version:       getVersion(),
		Args:          exactlyOneCorpus,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRankCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and the report summary")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the run history database")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records to stderr as JSON")

	addRankFlags(cmd)
	cmd.Flags().Bool("save", false, "Save the run to the history database")

	// Add subcommands
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// exactlyOneCorpus accepts a single positional argument.
func exactlyOneCorpus(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
