package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/pagerank/internal/config"
	"github.com/nao1215/pagerank/internal/crawler"
	"github.com/nao1215/pagerank/internal/model"
	"github.com/nao1215/pagerank/internal/rank"
)

// Step input errors.
var (
	// ErrNoGraph is returned by steps that run before the corpus was loaded.
	ErrNoGraph = errors.New("corpus has not been loaded")

	// ErrMissingResult is returned when a step needs an estimator result
	// that an earlier step did not produce.
	ErrMissingResult = errors.New("estimator result missing")
)

// ReferenceWarnThreshold is the reference deviation above which the
// reference step logs a warning.
const ReferenceWarnThreshold = 1e-2

// LoadCorpusStep reads the corpus directory into a link graph.
type LoadCorpusStep struct {
	// concurrency is the number of files parsed in parallel.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// LoadCorpusStepOption configures a LoadCorpusStep.
type LoadCorpusStepOption func(*LoadCorpusStep)

// WithLoadConcurrency sets how many files are parsed in parallel.
func WithLoadConcurrency(n int) LoadCorpusStepOption {
	return func(s *LoadCorpusStep) {
		s.concurrency = n
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadCorpusStepOption {
	return func(s *LoadCorpusStep) {
		s.logger = logger
	}
}

// NewLoadCorpusStep creates a new corpus loading step.
func NewLoadCorpusStep(opts ...LoadCorpusStepOption) *LoadCorpusStep {
	s := &LoadCorpusStep{
		concurrency: crawler.DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadCorpusStep) Name() string {
	return "load_corpus"
}

// Do loads report.Corpus and records the graph on the report.
func (s *LoadCorpusStep) Do(ctx context.Context, report *model.RankReport) error {
	g, err := crawler.LoadCorpus(ctx, report.Corpus,
		crawler.WithConcurrency(s.concurrency),
		crawler.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	report.SetGraph(g)
	return nil
}

// SampleStep runs the sampling estimator.
type SampleStep struct {
	damping float64
	samples int

	// seed is the sampler seed; 0 draws one from the clock at run time.
	seed int64

	walkers int
	logger  *slog.Logger
}

// SampleStepOption configures a SampleStep.
type SampleStepOption func(*SampleStep)

// WithSampleSeed fixes the sampler seed.
func WithSampleSeed(seed int64) SampleStepOption {
	return func(s *SampleStep) {
		s.seed = seed
	}
}

// WithSampleWalkers splits the draws across n parallel walks.
func WithSampleWalkers(n int) SampleStepOption {
	return func(s *SampleStep) {
		s.walkers = n
	}
}

// WithSampleStepLogger sets a custom logger for the sample step.
func WithSampleStepLogger(logger *slog.Logger) SampleStepOption {
	return func(s *SampleStep) {
		s.logger = logger
	}
}

// NewSampleStep creates a sampling step with the given damping factor and
// number of draws.
func NewSampleStep(damping float64, samples int, opts ...SampleStepOption) *SampleStep {
	s := &SampleStep{
		damping: damping,
		samples: samples,
		walkers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SampleStep) Name() string {
	return "sample"
}

// Do runs rank.Sample over the loaded graph.
// The seed used is recorded on the report even when it came from the clock.
func (s *SampleStep) Do(_ context.Context, report *model.RankReport) error {
	if report.Graph == nil {
		return ErrNoGraph
	}

	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	report.Damping = s.damping
	report.Samples = s.samples
	report.Walkers = s.walkers
	report.Seed = seed

	dist, err := rank.Sample(report.Graph, s.damping, s.samples,
		rank.WithSeed(seed),
		rank.WithWalkers(s.walkers),
		rank.WithSampleLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}
	report.Sampling = dist
	return nil
}

// IterateStep runs the iterative estimator.
type IterateStep struct {
	damping   float64
	epsilon   float64
	maxSweeps int
	logger    *slog.Logger
}

// IterateStepOption configures an IterateStep.
type IterateStepOption func(*IterateStep)

// WithIterateEpsilon sets the convergence threshold.
func WithIterateEpsilon(epsilon float64) IterateStepOption {
	return func(s *IterateStep) {
		s.epsilon = epsilon
	}
}

// WithIterateMaxSweeps sets the sweep cap.
func WithIterateMaxSweeps(n int) IterateStepOption {
	return func(s *IterateStep) {
		s.maxSweeps = n
	}
}

// WithIterateStepLogger sets a custom logger for the iterate step.
func WithIterateStepLogger(logger *slog.Logger) IterateStepOption {
	return func(s *IterateStep) {
		s.logger = logger
	}
}

// NewIterateStep creates an iteration step with the given damping factor.
func NewIterateStep(damping float64, opts ...IterateStepOption) *IterateStep {
	s := &IterateStep{
		damping:   damping,
		epsilon:   rank.DefaultEpsilon,
		maxSweeps: rank.DefaultMaxSweeps,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *IterateStep) Name() string {
	return "iterate"
}

// Do runs rank.IterateWithStats over the loaded graph.
func (s *IterateStep) Do(_ context.Context, report *model.RankReport) error {
	if report.Graph == nil {
		return ErrNoGraph
	}

	report.Damping = s.damping
	report.Epsilon = s.epsilon

	dist, sweeps, err := rank.IterateWithStats(report.Graph, s.damping,
		rank.WithEpsilon(s.epsilon),
		rank.WithMaxSweeps(s.maxSweeps),
		rank.WithIterateLogger(s.logger),
	)
	report.Sweeps = sweeps
	if err != nil {
		return fmt.Errorf("iteration failed: %w", err)
	}
	report.Iteration = dist
	return nil
}

// ReferenceStep compares the iterative result against gonum's PageRank.
type ReferenceStep struct {
	damping   float64
	tolerance float64
	logger    *slog.Logger
}

// ReferenceStepOption configures a ReferenceStep.
type ReferenceStepOption func(*ReferenceStep)

// WithReferenceTolerance sets the tolerance of the reference power method.
func WithReferenceTolerance(tol float64) ReferenceStepOption {
	return func(s *ReferenceStep) {
		s.tolerance = tol
	}
}

// WithReferenceLogger sets a custom logger for the reference step.
func WithReferenceLogger(logger *slog.Logger) ReferenceStepOption {
	return func(s *ReferenceStep) {
		s.logger = logger
	}
}

// NewReferenceStep creates a verification step with the given damping factor.
func NewReferenceStep(damping float64, opts ...ReferenceStepOption) *ReferenceStep {
	s := &ReferenceStep{
		damping:   damping,
		tolerance: rank.DefaultReferenceTolerance,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReferenceStep) Name() string {
	return "reference"
}

// Do records the largest per-page deviation between the iterative result
// and the reference.
func (s *ReferenceStep) Do(_ context.Context, report *model.RankReport) error {
	if report.Graph == nil {
		return ErrNoGraph
	}
	if report.Iteration == nil {
		return fmt.Errorf("%w: reference check needs the iteration result", ErrMissingResult)
	}

	ref, err := rank.Reference(report.Graph, s.damping, s.tolerance)
	if err != nil {
		return fmt.Errorf("reference check failed: %w", err)
	}

	report.ReferenceDeviation = report.Iteration.MaxAbsDiff(ref)
	if report.ReferenceDeviation > ReferenceWarnThreshold {
		s.logger.Warn("iteration deviates from reference",
			"corpus", report.Corpus,
			"deviation", report.ReferenceDeviation,
		)
	} else {
		s.logger.Debug("reference check", "deviation", report.ReferenceDeviation)
	}
	return nil
}

// AgreementStep measures the distance between the two estimates.
type AgreementStep struct {
	logger *slog.Logger
}

// NewAgreementStep creates an agreement step.
func NewAgreementStep(logger *slog.Logger) *AgreementStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgreementStep{logger: logger}
}

// Name returns the step name.
func (s *AgreementStep) Name() string {
	return "agreement"
}

// Do records the total variation distance between Sampling and Iteration.
func (s *AgreementStep) Do(_ context.Context, report *model.RankReport) error {
	if !report.HasResults() {
		return fmt.Errorf("%w: agreement needs both estimates", ErrMissingResult)
	}

	report.TotalVariation = report.Sampling.TotalVariation(report.Iteration)

	agreement := report.Agreement()
	if agreement == model.AgreementWeak {
		s.logger.Warn("estimators disagree",
			"corpus", report.Corpus,
			"total_variation", report.TotalVariation,
			"samples", report.Samples,
		)
	} else {
		s.logger.Debug("estimators agree",
			"total_variation", report.TotalVariation,
			"agreement", agreement.String(),
		)
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Damping is shared by every estimator.
	Damping float64

	// Samples is the number of draws of the sampler.
	Samples int

	// Seed fixes the sampler seed; 0 means clock seeded.
	Seed int64

	// Walkers splits the draws across parallel walks.
	Walkers int

	// Epsilon is the convergence threshold of the iterative estimator.
	Epsilon float64

	// MaxSweeps caps the iterative estimator.
	MaxSweeps int

	// Concurrency is the number of corpus files parsed in parallel.
	Concurrency int

	// Verify adds the reference step.
	Verify bool

	// Logger is passed to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDamping sets the damping factor.
func WithPipelineDamping(d float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Damping = d
	}
}

// WithPipelineSamples sets the number of draws.
func WithPipelineSamples(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Samples = n
	}
}

// WithPipelineSeed fixes the sampler seed.
func WithPipelineSeed(seed int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Seed = seed
	}
}

// WithPipelineWalkers sets the number of parallel walks.
func WithPipelineWalkers(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Walkers = n
	}
}

// WithPipelineEpsilon sets the convergence threshold.
func WithPipelineEpsilon(epsilon float64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Epsilon = epsilon
	}
}

// WithPipelineMaxSweeps sets the sweep cap.
func WithPipelineMaxSweeps(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxSweeps = n
	}
}

// WithPipelineConcurrency sets how many corpus files are parsed at once.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineVerify enables the reference step.
func WithPipelineVerify(verify bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Verify = verify
	}
}

// WithPipelineStepLogger sets the logger passed to every step.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// ConfigOptions translates a validated Config into pipeline options.
func ConfigOptions(cfg *config.Config) []DefaultPipelineOption {
	return []DefaultPipelineOption{
		WithPipelineDamping(cfg.Damping),
		WithPipelineSamples(cfg.Samples),
		WithPipelineSeed(cfg.Seed),
		WithPipelineWalkers(cfg.Walkers),
		WithPipelineEpsilon(cfg.Epsilon),
		WithPipelineMaxSweeps(cfg.MaxSweeps),
		WithPipelineConcurrency(cfg.Concurrency),
		WithPipelineVerify(cfg.Verify),
	}
}

// DefaultPipeline creates the standard ranking pipeline:
// load_corpus, sample, iterate, reference (when verifying) and agreement.
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The variadic parameter accepts pipeline config options (WithPipelineDamping, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Damping:     config.DefaultDamping,
		Samples:     config.DefaultSamples,
		Walkers:     config.DefaultWalkers,
		Epsilon:     config.DefaultEpsilon,
		MaxSweeps:   config.DefaultMaxSweeps,
		Concurrency: config.DefaultConcurrency,
		Logger:      p.logger,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadCorpusStep(
			WithLoadConcurrency(cfg.Concurrency),
			WithLoadLogger(cfg.Logger),
		),
		NewSampleStep(cfg.Damping, cfg.Samples,
			WithSampleSeed(cfg.Seed),
			WithSampleWalkers(cfg.Walkers),
			WithSampleStepLogger(cfg.Logger),
		),
		NewIterateStep(cfg.Damping,
			WithIterateEpsilon(cfg.Epsilon),
			WithIterateMaxSweeps(cfg.MaxSweeps),
			WithIterateStepLogger(cfg.Logger),
		),
	)
	if cfg.Verify {
		p.AddStep(NewReferenceStep(cfg.Damping, WithReferenceLogger(cfg.Logger)))
	}
	p.AddStep(NewAgreementStep(cfg.Logger))

	return p
}
