package rank

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/nao1215/pagerank/internal/model"
)

// DefaultReferenceTolerance is the L2 tolerance passed to the reference
// power method.
const DefaultReferenceTolerance = 1e-9

// Reference computes PageRank with gonum's power method.
//
// gonum models a dangling node as linking to every node, the same policy
// as Transition, so on valid input Reference and Iterate approximate the
// same fixed point. Reference is an independent cross-check; the ranking
// tools use Iterate.
func Reference(g *model.LinkGraph, d, tol float64) (model.Distribution, error) {
	if err := validateGraph(g); err != nil {
		return nil, err
	}
	if err := validateDamping(d); err != nil {
		return nil, err
	}
	if math.IsNaN(tol) || tol <= 0 {
		return nil, fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidArgument, tol)
	}

	dg := simple.NewDirectedGraph()
	for i := range g.Len() {
		dg.AddNode(simple.Node(i))
	}
	for i := range g.Len() {
		for _, j := range g.LinksAt(i) {
			dg.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
		}
	}

	scores := network.PageRank(dg, d, tol)

	dist := make(model.Distribution, len(scores))
	for id, score := range scores {
		dist[g.PageAt(int(id))] = score
	}
	return dist, nil
}
