package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagerank/internal/config"
	"github.com/nao1215/pagerank/internal/model"
	"github.com/nao1215/pagerank/internal/pipeline"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch CORPUS...",
		Short: "Rank several corpora concurrently",
		Long: `Batch ranks every CORPUS with the same settings, several at a time.

Reports are written in argument order. A corpus that fails to rank does not
stop the others; its error is printed and the command exits non-zero at the end.
Per-corpus settings from the configuration file are not applied in batch
mode, only its defaults.

Examples:
  # Rank three corpora, two at a time
  pagerank batch -b 2 corpus0 corpus1 corpus2

  # Save every run for later comparison
  pagerank batch --save corpus0 corpus1`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCmd,
	}

	addRankFlags(cmd)
	cmd.Flags().IntP("batch-size", "b", pipeline.DefaultBatchConcurrency,
		"Number of corpora ranked at once")
	cmd.Flags().Bool("save", false, "Save the runs to the history database")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0], false)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	batchSize, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	if len(cfg.CorpusConfigs.Corpora) > 0 {
		logger.Warn("batch mode uses the configuration defaults only; per-corpus settings are ignored",
			"corpusCount", len(cfg.CorpusConfigs.Corpora))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBatch(ctx, cfg, args, batchSize, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// runBatch ranks corpora concurrently and writes the reports in input order.
func runBatch(ctx context.Context, cfg *config.Config, corpora []string, batchSize int,
	stdout, stderr io.Writer, logger *slog.Logger) error {
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newPipeline(cfg, logger)
		},
		pipeline.WithConcurrency(batchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, corpora)

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // write errors are reported below

	writer := newReportWriter(cfg, output)
	plain := !cfg.JSONReport && !cfg.MarkdownReport

	succeeded := make([]*model.RankReport, 0, len(reports))
	for i, r := range reports {
		if r.ErrorMessage != "" {
			fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", i+1, len(reports), r.Corpus, r.ErrorMessage)
			continue
		}

		if plain {
			fmt.Fprintf(output, "==> %s <==\n", r.Corpus)
		}
		if _, err := writer.Write(r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if plain && i < len(reports)-1 {
			fmt.Fprintln(output)
		}
		succeeded = append(succeeded, r)
	}

	logger.Info("batch finished",
		"corpora", len(corpora),
		"succeeded", len(succeeded),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if cfg.SaveToDB && len(succeeded) > 0 {
		if err := saveRuns(ctx, cfg.DBDir, logger, succeeded...); err != nil {
			return err
		}
	}

	if batchErr != nil {
		return fmt.Errorf("batch interrupted: %w", batchErr)
	}
	if failed := len(reports) - len(succeeded); failed > 0 {
		return fmt.Errorf("%d of %d corpora failed to rank", failed, len(reports))
	}
	return nil
}
