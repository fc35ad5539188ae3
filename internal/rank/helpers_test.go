package rank

import (
	"fmt"
	"math/rand"

	"github.com/nao1215/pagerank/internal/model"
)

// chainGraph is the three page corpus 1 <-> 2 <-> 3.
func chainGraph() *model.LinkGraph {
	return model.NewLinkGraph(map[model.PageID][]model.PageID{
		"1.html": {"2.html"},
		"2.html": {"1.html", "3.html"},
		"3.html": {"2.html"},
	})
}

// cycleGraph is the two page corpus a <-> b.
func cycleGraph() *model.LinkGraph {
	return model.NewLinkGraph(map[model.PageID][]model.PageID{
		"a.html": {"b.html"},
		"b.html": {"a.html"},
	})
}

// singleGraph is a corpus of one dangling page.
func singleGraph() *model.LinkGraph {
	return model.NewLinkGraph(map[model.PageID][]model.PageID{
		"a.html": nil,
	})
}

// danglingGraph has one dangling page among linked ones.
func danglingGraph() *model.LinkGraph {
	return model.NewLinkGraph(map[model.PageID][]model.PageID{
		"1.html": {"2.html", "3.html"},
		"2.html": {"3.html"},
		"3.html": {"1.html", "4.html"},
		"4.html": nil,
	})
}

// randomGraph builds a graph of n pages where each possible link exists
// with probability p. Roughly one page in ten is forced to be dangling.
// The generator is seeded so the graph is the same on every run.
func randomGraph(seed int64, n int, p float64) *model.LinkGraph {
	r := rand.New(rand.NewSource(seed))
	adj := make(map[model.PageID][]model.PageID, n)
	for i := range n {
		page := model.PageID(fmt.Sprintf("p%04d.html", i))
		adj[page] = nil
		if r.Intn(10) == 0 {
			continue
		}
		for j := range n {
			if i != j && r.Float64() < p {
				adj[page] = append(adj[page], model.PageID(fmt.Sprintf("p%04d.html", j)))
			}
		}
	}
	return model.NewLinkGraph(adj)
}
