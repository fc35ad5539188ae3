package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pagerank/internal/model"
)

// DefaultBatchConcurrency is the number of corpora ranked at once.
const DefaultBatchConcurrency = 4

// BatchProcessor ranks several corpora concurrently, each with its own
// pipeline built by newPipeline.
type BatchProcessor struct {
	newPipeline func() *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency caps the number of corpora ranked at once.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor returns a BatchProcessor that calls newPipeline once per
// corpus.
func NewBatchProcessor(newPipeline func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		newPipeline: newPipeline,
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ProcessBatch ranks every corpus and returns one report per corpus, in
// input order.
//
// Ranking failures stay in their reports and do not affect other corpora.
// The returned error is non-nil only when ctx ends before the batch does.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, corpora []string) ([]*model.RankReport, error) {
	b.logger.Info("starting batch",
		"corpora", len(corpora),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	reports := make([]*model.RankReport, len(corpora))
	for i, corpus := range corpora {
		reports[i] = model.NewRankReport(corpus)
	}

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, report := range reports {
		g.Go(func() error {
			if err := b.rank(gctx, report); err != nil {
				failed.Add(1)
				if report.Cancelled {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch complete",
		"corpora", len(corpora),
		"failed", failed.Load(),
		"elapsed", time.Since(start),
	)
	return reports, err
}

// rank runs a fresh pipeline over report. Reports that never started because
// ctx was already done are marked cancelled.
func (b *BatchProcessor) rank(ctx context.Context, report *model.RankReport) error {
	if err := ctx.Err(); err != nil {
		report.Cancelled = true
		report.Error = err
		report.ErrorMessage = err.Error()
		return err
	}

	if err := b.newPipeline().Execute(ctx, report); err != nil {
		b.logger.Warn("ranking failed",
			"corpus", report.Corpus,
			"step", report.FailedStep,
			"error", err,
		)
		return err
	}

	b.logger.Info("ranking completed", "corpus", report.Corpus)
	return nil
}
