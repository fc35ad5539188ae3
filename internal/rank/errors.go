package rank

import (
	"errors"
	"fmt"
	"math"

	"github.com/nao1215/pagerank/internal/model"
)

// Estimator errors.
// Callers match them with errors.Is; the returned errors wrap them with the
// offending value.
var (
	// ErrInvalidArgument is returned for a bad damping factor, an empty
	// graph, an unknown page, a sample count below 1 or an invalid option.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConvergence is returned when the iterative estimator exceeds its
	// sweep cap without meeting the convergence threshold.
	ErrConvergence = errors.New("iteration did not converge")
)

// Default estimator parameters.
const (
	// DefaultDamping is the canonical probability of following a link.
	DefaultDamping = 0.85

	// DefaultSamples is the default number of draws of the sampler.
	DefaultSamples = 10000

	// DefaultEpsilon is the default absolute convergence threshold.
	DefaultEpsilon = 0.001

	// DefaultMaxSweeps caps the iterative estimator. The update operator is
	// a contraction with factor d, so valid inputs converge long before.
	DefaultMaxSweeps = 10000
)

// validateDamping rejects damping factors outside the open interval (0, 1).
// Both endpoints collapse the model: d == 0 ignores links entirely and
// d == 1 removes the teleport term that makes the chain ergodic.
func validateDamping(d float64) error {
	if math.IsNaN(d) || d <= 0 || d >= 1 {
		return fmt.Errorf("%w: damping factor must be in (0, 1), got %v", ErrInvalidArgument, d)
	}
	return nil
}

// validateGraph rejects nil and empty graphs.
func validateGraph(g *model.LinkGraph) error {
	if g.Len() == 0 {
		return fmt.Errorf("%w: graph has no pages", ErrInvalidArgument)
	}
	return nil
}
