package rank

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nao1215/pagerank/internal/model"
)

// iterator holds the configuration of one Iterate call.
type iterator struct {
	epsilon   float64
	maxSweeps int
	logger    *slog.Logger
}

// IterateOption configures Iterate.
type IterateOption func(*iterator)

// WithEpsilon sets the absolute convergence threshold. It must be positive.
func WithEpsilon(epsilon float64) IterateOption {
	return func(it *iterator) {
		it.epsilon = epsilon
	}
}

// WithMaxSweeps caps the number of sweeps. It must be at least 1.
func WithMaxSweeps(n int) IterateOption {
	return func(it *iterator) {
		it.maxSweeps = n
	}
}

// WithIterateLogger sets the logger for per-sweep debug output.
func WithIterateLogger(logger *slog.Logger) IterateOption {
	return func(it *iterator) {
		it.logger = logger
	}
}

// Iterate computes PageRank as the fixed point of
//
//	PR(p) = (1-d)/N + d * Σ PR(q)/L(q)   over pages q linking to p
//
// where a dangling page q counts as linking to every page, including p and
// itself, with L(q) = N. Ranks start at 1/N and are recomputed in sweeps
// until no page changes by more than epsilon.
func Iterate(g *model.LinkGraph, d float64, opts ...IterateOption) (model.Distribution, error) {
	dist, _, err := IterateWithStats(g, d, opts...)
	return dist, err
}

// IterateWithStats is Iterate that also returns the number of sweeps run.
// When the sweep cap is exceeded the error wraps ErrConvergence and the
// sweep count equals the cap.
func IterateWithStats(g *model.LinkGraph, d float64, opts ...IterateOption) (model.Distribution, int, error) {
	if err := validateGraph(g); err != nil {
		return nil, 0, err
	}
	if err := validateDamping(d); err != nil {
		return nil, 0, err
	}

	it := &iterator{
		epsilon:   DefaultEpsilon,
		maxSweeps: DefaultMaxSweeps,
	}
	for _, opt := range opts {
		opt(it)
	}
	if math.IsNaN(it.epsilon) || it.epsilon <= 0 {
		return nil, 0, fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidArgument, it.epsilon)
	}
	if it.maxSweeps < 1 {
		return nil, 0, fmt.Errorf("%w: sweep cap must be at least 1, got %d", ErrInvalidArgument, it.maxSweeps)
	}
	if it.logger == nil {
		it.logger = slog.Default()
	}

	sw := newSweeper(g, d)
	cur := make([]float64, g.Len())
	for i := range cur {
		cur[i] = 1 / float64(len(cur))
	}
	next := make([]float64, len(cur))

	var delta float64
	for sweep := 1; sweep <= it.maxSweeps; sweep++ {
		delta = sw.sweep(cur, next)
		cur, next = next, cur

		it.logger.Debug("sweep", "n", sweep, "max_delta", delta)

		if delta <= it.epsilon {
			dist := make(model.Distribution, len(cur))
			for i, r := range cur {
				dist[g.PageAt(i)] = r
			}
			return dist, sweep, nil
		}
	}

	return nil, it.maxSweeps, fmt.Errorf("%w: max delta %g after %d sweeps (epsilon %g)",
		ErrConvergence, delta, it.maxSweeps, it.epsilon)
}

// sweeper holds the per-call precomputation of the iterative estimator.
type sweeper struct {
	damping  float64
	n        float64
	inbound  [][]int
	outDeg   []float64
	dangling []int

	// share is scratch space for cur[q]/L(q).
	share []float64
}

// newSweeper precomputes inbound lists, out-degrees and dangling pages of g.
func newSweeper(g *model.LinkGraph, d float64) *sweeper {
	n := g.Len()
	sw := &sweeper{
		damping: d,
		n:       float64(n),
		inbound: g.Inbound(),
		outDeg:  make([]float64, n),
		share:   make([]float64, n),
	}
	for i := range n {
		k := len(g.LinksAt(i))
		sw.outDeg[i] = float64(k)
		if k == 0 {
			sw.dangling = append(sw.dangling, i)
		}
	}
	return sw
}

// sweep computes one full update from the snapshot cur into next and
// returns the largest absolute change. cur is only read, so every
// comparison in a sweep sees the same snapshot.
func (sw *sweeper) sweep(cur, next []float64) float64 {
	// Dangling pages spread their rank over all N pages. That mass is the
	// same for every page, so it is folded into the base term once.
	var danglingMass float64
	for _, q := range sw.dangling {
		danglingMass += cur[q]
	}
	base := (1-sw.damping)/sw.n + sw.damping*danglingMass/sw.n

	for q, r := range cur {
		if sw.outDeg[q] > 0 {
			sw.share[q] = r / sw.outDeg[q]
		}
	}

	var maxDelta float64
	for p := range next {
		var inflow float64
		for _, q := range sw.inbound[p] {
			inflow += sw.share[q]
		}
		next[p] = base + sw.damping*inflow
		if delta := math.Abs(next[p] - cur[p]); delta > maxDelta {
			maxDelta = delta
		}
	}
	return maxDelta
}
