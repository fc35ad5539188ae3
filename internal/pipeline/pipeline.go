package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/pagerank/internal/model"
)

// Step is one stage of a ranking run. A step reads what earlier steps put
// into the report and adds its own results.
type Step interface {
	// Do runs the step against report. Long running steps observe ctx.
	Do(ctx context.Context, report *model.RankReport) error

	// Name identifies the step in logs and in report.PerformedSteps.
	Name() string
}

// StepFunc adapts a plain function to the Step interface.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, report *model.RankReport) error
}

// NewStepFunc returns a Step named name that calls fn.
func NewStepFunc(name string, fn func(ctx context.Context, report *model.RankReport) error) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

// Do calls the wrapped function.
func (s *StepFunc) Do(ctx context.Context, report *model.RankReport) error {
	return s.fn(ctx, report)
}

// Name returns the step name.
func (s *StepFunc) Name() string {
	return s.name
}

// Pipeline runs steps in order over a single report.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps running later steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline going after a step fails.
// The failure is still recorded in the report, and later steps see the
// report without the failed step's results; the steps of DefaultPipeline
// fail with ErrNoGraph or ErrMissingResult in that case.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order.
//
// ctx is checked between steps: once it is done the report is marked
// Cancelled and ctx.Err() is returned. A failing step is recorded in
// report.Error and report.FailedStep; Execute then returns that error,
// unless the pipeline continues on error, in which case it returns nil and
// the report carries the last failure.
func (p *Pipeline) Execute(ctx context.Context, report *model.RankReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"corpus", report.Corpus,
				"reason", err,
			)
			report.Cancelled = true
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"corpus", report.Corpus,
		)

		start := time.Now()
		err := step.Do(ctx, report)
		elapsed := time.Since(start)

		report.PerformedSteps = append(report.PerformedSteps, step.Name())

		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"corpus", report.Corpus,
				"elapsed", elapsed,
				"error", err,
			)
			report.Error = err
			report.ErrorMessage = err.Error()
			report.FailedStep = step.Name()

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"corpus", report.Corpus,
			"elapsed", elapsed,
		)
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
