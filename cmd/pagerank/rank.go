package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagerank/internal/config"
	"github.com/nao1215/pagerank/internal/database"
	applog "github.com/nao1215/pagerank/internal/log"
	"github.com/nao1215/pagerank/internal/model"
	"github.com/nao1215/pagerank/internal/pipeline"
	"github.com/nao1215/pagerank/internal/report"
)

// addRankFlags registers the estimator and report flags shared by the root
// and batch commands.
func addRankFlags(cmd *cobra.Command) {
	// Estimator flags
	cmd.Flags().Float64P(config.FlagDamping, "d", config.DefaultDamping,
		"Probability of following a link instead of jumping to a random page")
	cmd.Flags().IntP(config.FlagSamples, "n", config.DefaultSamples,
		"Number of random surfer steps of the sampling estimator")
	cmd.Flags().Float64P(config.FlagEpsilon, "e", config.DefaultEpsilon,
		"Iteration stops once no rank changes by more than this")
	cmd.Flags().Int(config.FlagMaxSweeps, config.DefaultMaxSweeps,
		"Give up iterating after this many sweeps")
	cmd.Flags().Int64(config.FlagSeed, 0,
		"Seed for the sampling estimator (0 seeds from the clock)")
	cmd.Flags().IntP(config.FlagWalkers, "w", config.DefaultWalkers,
		"Split the samples across this many parallel random walks")
	cmd.Flags().Int(config.FlagConcurrency, config.DefaultConcurrency,
		"Number of corpus files parsed in parallel")
	cmd.Flags().Bool(config.FlagVerify, false,
		"Cross-check the iterative result against an independent implementation")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagerank in current or home directory)")

	// Report flags
	cmd.Flags().IntP(config.FlagPrecision, "p", config.DefaultPrecision,
		"Decimal places of printed ranks")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runRankCmd executes the root command.
func runRankCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0], true)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRank(ctx, cfg, cmd.OutOrStdout(), logger)
}

// newLogger builds the command logger on stderr, as text or, with
// --log-json, as JSON.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if asJSON, err := cmd.Flags().GetBool("log-json"); err == nil && asJSON {
		return applog.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir retrieves the database directory from the command or its parent.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// buildConfig creates a Config for corpus from cobra command flags and the
// configuration file. Flags the user set explicitly win over the file.
// With perCorpus unset only the file's defaults apply.
func buildConfig(cmd *cobra.Command, corpus string, perCorpus bool) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Corpus = corpus
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDir(cmd)

	var err error

	if cfg.Damping, err = cmd.Flags().GetFloat64(config.FlagDamping); err != nil {
		return nil, err
	}
	if cfg.Samples, err = cmd.Flags().GetInt(config.FlagSamples); err != nil {
		return nil, err
	}
	if cfg.Epsilon, err = cmd.Flags().GetFloat64(config.FlagEpsilon); err != nil {
		return nil, err
	}
	if cfg.MaxSweeps, err = cmd.Flags().GetInt(config.FlagMaxSweeps); err != nil {
		return nil, err
	}
	if cfg.Seed, err = cmd.Flags().GetInt64(config.FlagSeed); err != nil {
		return nil, err
	}
	if cfg.Walkers, err = cmd.Flags().GetInt(config.FlagWalkers); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt(config.FlagConcurrency); err != nil {
		return nil, err
	}
	if cfg.Verify, err = cmd.Flags().GetBool(config.FlagVerify); err != nil {
		return nil, err
	}
	if cfg.Precision, err = cmd.Flags().GetInt(config.FlagPrecision); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cmd.Flags().Lookup("save") != nil {
		if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
			return nil, err
		}
	}

	cfg.CorpusConfigs, err = loadCorpusConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	settings := cfg.CorpusConfigs.Defaults
	if perCorpus {
		settings = cfg.CorpusConfigs.GetCorpusSettings(corpus)
	}
	cfg.ApplySettings(settings, cmd.Flags().Changed)

	return cfg, nil
}

// loadCorpusConfigs loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty configuration is used when no file is found.
func loadCorpusConfigs(explicitPath string) (*config.File, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return &config.File{Corpora: make(map[string]config.Settings)}, nil
	}

	cf, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return cf, nil
}

// newPipeline creates the ranking pipeline for cfg.
func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	configOpts := append(pipeline.ConfigOptions(cfg), pipeline.WithPipelineStepLogger(logger))
	return pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		configOpts...,
	)
}

// runRank ranks one corpus, writes the report and optionally saves the run.
func runRank(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting ranking",
		"corpus", cfg.Corpus,
		"damping", cfg.Damping,
		"samples", cfg.Samples,
		"epsilon", cfg.Epsilon,
		"walkers", cfg.Walkers,
	)

	rankReport := model.NewRankReport(cfg.Corpus)
	if err := newPipeline(cfg, logger).Execute(ctx, rankReport); err != nil {
		return fmt.Errorf("failed to rank %s: %w", cfg.Corpus, err)
	}

	if err := writeReport(cfg, stdout, rankReport); err != nil {
		return err
	}

	if cfg.SaveToDB {
		return saveRuns(ctx, cfg.DBDir, logger, rankReport)
	}
	return nil
}

// newReportWriter returns the writer for the requested format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, report.WithMarkdownPrecision(cfg.Precision))
	default:
		return report.NewSimpleWriter(output,
			report.WithPrecision(cfg.Precision),
			report.WithVerbose(cfg.Verbose),
		)
	}
}

// openOutput returns the configured report file, or stdout.
// The returned close function must be called when writing is done.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeReport writes one report in the requested format.
func writeReport(cfg *config.Config, stdout io.Writer, rankReport *model.RankReport) error {
	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // write errors are reported below

	if _, err := newReportWriter(cfg, output).Write(rankReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveRuns stores finished reports in the history database.
// Cancelled runs are skipped.
func saveRuns(ctx context.Context, dbDir string, logger *slog.Logger, reports ...*model.RankReport) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var errs []error
	for _, r := range reports {
		if r == nil || r.Cancelled {
			continue
		}
		id, err := db.SaveRun(ctx, r)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save run of %s: %w", r.Corpus, err))
			continue
		}
		logger.Info("run saved to database", "corpus", r.Corpus, "id", id)
	}
	return errors.Join(errs...)
}
