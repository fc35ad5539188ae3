package rank

import (
	"fmt"

	"github.com/nao1215/pagerank/internal/model"
)

// Transition returns the probability distribution over the next page of a
// random surfer currently on page.
//
// Every page receives (1-d)/N and every page linked from page receives an
// additional d/k, where N is the corpus size and k the number of links.
// A dangling page yields the uniform distribution 1/N. Either way the
// result covers every page of g and sums to 1.
func Transition(g *model.LinkGraph, page model.PageID, d float64) (model.Distribution, error) {
	if err := validateGraph(g); err != nil {
		return nil, err
	}
	if err := validateDamping(d); err != nil {
		return nil, err
	}
	i, ok := g.Index(page)
	if !ok {
		return nil, fmt.Errorf("%w: page %q is not in the graph", ErrInvalidArgument, page)
	}

	row := make([]float64, g.Len())
	transitionRow(g, i, d, row)

	dist := make(model.Distribution, len(row))
	for j, p := range row {
		dist[g.PageAt(j)] = p
	}
	return dist, nil
}

// transitionRow writes the transition probabilities out of page index i
// into row, which must have length g.Len(). Arguments are not validated.
func transitionRow(g *model.LinkGraph, i int, d float64, row []float64) {
	n := float64(len(row))
	links := g.LinksAt(i)

	if len(links) == 0 {
		uniform := 1 / n
		for j := range row {
			row[j] = uniform
		}
		return
	}

	base := (1 - d) / n
	for j := range row {
		row[j] = base
	}
	follow := d / float64(len(links))
	for _, j := range links {
		row[j] += follow
	}
}
