package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagerank/internal/database"
	"github.com/nao1215/pagerank/internal/model"
	"github.com/nao1215/pagerank/internal/report"
)

// Constants for rank change directions.
const (
	directionUp        = "up"
	directionDown      = "down"
	directionUnchanged = "unchanged"
)

// unchangedThreshold is the rank change below which a page counts as unchanged.
const unchangedThreshold = 5e-5

// errTooFewRuns is returned by --compare when fewer than two runs exist.
var errTooFewRuns = errors.New("at least two saved runs of the same link graph are required")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [CORPUS]",
		Short: "Show saved ranking runs",
		Long: `History lists runs saved with --save.

Without CORPUS it lists every corpus in the database. With CORPUS it lists
the runs of that corpus, newest first.

--compare shows how the iterative ranks changed between the two latest runs
over the same link graph. Runs are matched by a digest of the link
structure, so a corpus that was moved or copied still compares with its
earlier runs.

Examples:
  # List corpora with saved runs
  pagerank history

  # List runs of a corpus
  pagerank history corpus0

  # Show rank changes between the two latest runs
  pagerank history --compare corpus0

  # Print a saved run in full
  pagerank history --id 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("compare", false,
		"Compare the two latest runs of the corpus")
	cmd.Flags().Int64("id", 0,
		"Print the saved run with this ID (see the run list for IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if compare && len(args) == 0 {
		return errors.New("--compare requires a corpus")
	}

	stdout := cmd.OutOrStdout()

	db, err := database.Open(getDBDir(cmd), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stdout, "No saved runs (rank with --save to record runs).")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case runID != 0:
		return showRun(ctx, db, runID, stdout)
	case compare:
		return compareLatestRuns(ctx, db, args[0], jsonOutput, stdout)
	case len(args) == 1:
		return listRunHistory(ctx, db, args[0], stdout)
	default:
		return listCorpora(ctx, db, stdout)
	}
}

// listCorpora prints every corpus with saved runs.
func listCorpora(ctx context.Context, db *database.RunDB, w io.Writer) error {
	corpora, err := db.ListCorpora(ctx)
	if err != nil {
		return err
	}

	if len(corpora) == 0 {
		fmt.Fprintln(w, "No saved runs.")
		return nil
	}

	fmt.Fprintf(w, "Corpora with saved runs (%d):\n", len(corpora))
	for _, corpus := range corpora {
		fmt.Fprintf(w, "  %s\n", corpus)
	}
	return nil
}

// listRunHistory prints the runs of corpus, newest first.
func listRunHistory(ctx context.Context, db *database.RunDB, corpus string, w io.Writer) error {
	history, err := db.GetRunHistory(ctx, corpus)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(w, "No saved runs for %s.\n", database.CorpusKey(corpus))
		return nil
	}

	fmt.Fprintf(w, "Runs of %s (%d):\n", history[0].Corpus, len(history))
	fmt.Fprintf(w, "%6s  %-19s  %5s  %7s  %8s  %20s  %6s  %s\n",
		"ID", "Ranked", "Pages", "Damping", "Samples", "Seed", "Sweeps", "Agreement")
	for _, meta := range history {
		agreement := meta.Agreement().String()
		if meta.Error != "" {
			agreement = "ERROR: " + meta.Error
		}
		fmt.Fprintf(w, "%6d  %-19s  %5d  %7g  %8d  %20d  %6d  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.PageCount,
			meta.Damping,
			meta.Samples,
			meta.Seed,
			meta.Sweeps,
			agreement,
		)
	}
	return nil
}

// showRun prints a saved run with the verbose text layout.
func showRun(ctx context.Context, db *database.RunDB, id int64, w io.Writer) error {
	run, err := db.GetRunByID(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no saved run with ID %d", id)
	}

	_, err = report.NewSimpleWriter(w, report.WithVerbose(true)).Write(run)
	return err
}

// RankChange is the change of one page's iterative rank between two runs.
type RankChange struct {
	Page      model.PageID `json:"page"`
	Previous  float64      `json:"previous"`
	Current   float64      `json:"current"`
	Delta     float64      `json:"delta"`
	Direction string       `json:"direction"`
}

// ComparisonResult holds the comparison of two runs over the same link graph.
type ComparisonResult struct {
	Digest          string       `json:"digest"`
	PreviousCorpus  string       `json:"previous_corpus"`
	CurrentCorpus   string       `json:"current_corpus"`
	PreviousRanked  string       `json:"previous_ranked"`
	CurrentRanked   string       `json:"current_ranked"`
	PreviousDamping float64      `json:"previous_damping"`
	CurrentDamping  float64      `json:"current_damping"`
	Changes         []RankChange `json:"changes"`
}

// compareLatestRuns compares the two latest runs over the link graph of
// the latest run of corpus.
func compareLatestRuns(ctx context.Context, db *database.RunDB, corpus string, jsonOutput bool, w io.Writer) error {
	history, err := db.GetRunHistory(ctx, corpus)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no saved runs for %s", database.CorpusKey(corpus))
	}

	runs, err := db.GetLatestRuns(ctx, history[0].Digest, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return errTooFewRuns
	}

	result := compareRuns(runs[1], runs[0])

	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return outputComparisonText(result, w)
}

// compareRuns compares the iterative ranks of two runs. Changes are
// ordered by the size of the change, largest first, then by page.
func compareRuns(previous, current *model.RankReport) *ComparisonResult {
	result := &ComparisonResult{
		Digest:          current.Digest,
		PreviousCorpus:  previous.Corpus,
		CurrentCorpus:   current.Corpus,
		PreviousRanked:  previous.DateRanked.Format("2006-01-02 15:04:05"),
		CurrentRanked:   current.DateRanked.Format("2006-01-02 15:04:05"),
		PreviousDamping: previous.Damping,
		CurrentDamping:  current.Damping,
		Changes:         make([]RankChange, 0, len(current.Iteration)),
	}

	// Both runs cover the same link graph, so they rank the same pages.
	for _, e := range current.Iteration.Sorted() {
		prev := previous.Iteration.Get(e.Page)

		change := RankChange{
			Page:     e.Page,
			Previous: prev,
			Current:  e.Rank,
			Delta:    e.Rank - prev,
		}
		switch {
		case math.Abs(change.Delta) < unchangedThreshold:
			change.Direction = directionUnchanged
		case change.Delta > 0:
			change.Direction = directionUp
		default:
			change.Direction = directionDown
		}
		result.Changes = append(result.Changes, change)
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		di, dj := math.Abs(result.Changes[i].Delta), math.Abs(result.Changes[j].Delta)
		if di != dj {
			return di > dj
		}
		return result.Changes[i].Page < result.Changes[j].Page
	})

	return result
}

// outputComparisonText prints a comparison as text.
func outputComparisonText(result *ComparisonResult, w io.Writer) error {
	fmt.Fprintf(w, "Comparing runs of %s\n", result.CurrentCorpus)
	fmt.Fprintf(w, "  previous: %s (damping %g, %s)\n", result.PreviousRanked, result.PreviousDamping, result.PreviousCorpus)
	fmt.Fprintf(w, "  current:  %s (damping %g, %s)\n", result.CurrentRanked, result.CurrentDamping, result.CurrentCorpus)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-24s  %8s  %8s  %9s  %s\n", "Page", "Previous", "Current", "Delta", "")
	for _, c := range result.Changes {
		fmt.Fprintf(w, "  %-24s  %8.4f  %8.4f  %s  %s\n",
			c.Page, c.Previous, c.Current, formatDelta(c.Delta), formatDirection(c.Direction))
	}
	return nil
}

// formatDelta formats a rank change with a sign.
func formatDelta(delta float64) string {
	return fmt.Sprintf("%+9.4f", delta)
}

// formatDirection returns a marker for a change direction.
func formatDirection(direction string) string {
	switch direction {
	case directionUp:
		return "↑"
	case directionDown:
		return "↓"
	default:
		return ""
	}
}
