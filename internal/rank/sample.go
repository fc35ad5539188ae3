package rank

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/nao1215/pagerank/internal/model"
)

// sampler holds the configuration of one Sample call.
type sampler struct {
	// seed is the root seed of all walker streams.
	seed int64

	// seeded is true when the caller supplied a seed.
	seeded bool

	// walkers is the number of independent walks to split the draws across.
	walkers int

	// logger receives debug output.
	logger *slog.Logger
}

// SampleOption configures Sample.
type SampleOption func(*sampler)

// WithSeed makes the sampler reproducible. Without it the seed is taken
// from the clock.
func WithSeed(seed int64) SampleOption {
	return func(s *sampler) {
		s.seed = seed
		s.seeded = true
	}
}

// WithWalkers splits the draws across n independent random walks that run
// concurrently. Each walk picks its own random start page and uses its own
// random stream derived from the seed. n is capped at the sample count.
func WithWalkers(n int) SampleOption {
	return func(s *sampler) {
		s.walkers = n
	}
}

// WithSampleLogger sets the logger for debug output.
func WithSampleLogger(logger *slog.Logger) SampleOption {
	return func(s *sampler) {
		s.logger = logger
	}
}

// Sample estimates PageRank by a random walk of n steps.
//
// The walk starts on a page chosen uniformly at random. At every step the
// next page is drawn from Transition for the current page, and its visit
// is counted. A page's rank is its visit count divided by n. Every page of
// g appears in the result; pages never visited have rank 0.
func Sample(g *model.LinkGraph, d float64, n int, opts ...SampleOption) (model.Distribution, error) {
	if err := validateGraph(g); err != nil {
		return nil, err
	}
	if err := validateDamping(d); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: sample count must be at least 1, got %d", ErrInvalidArgument, n)
	}

	s := &sampler{walkers: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.walkers < 1 {
		return nil, fmt.Errorf("%w: walker count must be at least 1, got %d", ErrInvalidArgument, s.walkers)
	}
	if !s.seeded {
		s.seed = time.Now().UnixNano()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	walkers := min(s.walkers, n)
	counts := s.run(g, d, n, walkers)

	dist := make(model.Distribution, g.Len())
	for i, c := range counts {
		dist[g.PageAt(i)] = float64(c) / float64(n)
	}

	s.logger.Debug("sampling complete",
		"pages", g.Len(),
		"samples", n,
		"walkers", walkers,
	)

	return dist, nil
}

// run performs the walks and returns the merged visit counts per page index.
func (s *sampler) run(g *model.LinkGraph, d float64, n, walkers int) []int {
	if walkers == 1 {
		return walk(g, d, n, newRNG(s.seed))
	}

	// Each walker writes only its own slot; Wait is the barrier before merging.
	partial := make([][]int, walkers)
	var eg errgroup.Group
	for w := range walkers {
		steps := n / walkers
		if w < n%walkers {
			steps++
		}
		rng := newRNG(deriveSeed(s.seed, uint64(w)))
		eg.Go(func() error {
			partial[w] = walk(g, d, steps, rng)
			return nil
		})
	}
	_ = eg.Wait() //nolint:errcheck // walkers never fail

	counts := make([]int, g.Len())
	for _, p := range partial {
		for i, c := range p {
			counts[i] += c
		}
	}
	return counts
}

// walk runs one random walk of the given number of steps and returns the
// visit counts per page index.
//
// Cumulative transition rows are cached per page for the duration of the
// walk; the graph is immutable, so a page's row never changes.
func walk(g *model.LinkGraph, d float64, steps int, rng *rand.Rand) []int {
	n := g.Len()
	counts := make([]int, n)
	cdfs := make([][]float64, n)
	row := make([]float64, n)

	current := rng.Intn(n)
	for range steps {
		cdf := cdfs[current]
		if cdf == nil {
			transitionRow(g, current, d, row)
			cdf = floats.CumSum(make([]float64, n), row)
			cdfs[current] = cdf
		}
		current = drawIndex(cdf, rng.Float64())
		counts[current]++
	}
	return counts
}
