package model

import (
	"sort"
)

// PageID identifies a page within a corpus.
// For file based corpora this is the file name (e.g. "1.html").
type PageID string

// LinkGraph is the immutable link structure of a corpus.
//
// Pages are stored in lexicographic order and addressed internally by index,
// so estimators can keep their state in plain slices instead of maps.
// Every link target is a page of the same graph and no page links to itself.
// A page may have no outbound links at all (a dangling page).
//
// Design decision: LinkGraph exposes no mutating methods. It is built once by
// NewLinkGraph and then shared read-only between estimators and between the
// goroutines of a parallel sampler without any locking.
type LinkGraph struct {
	// pages holds every page id in sorted order.
	pages []PageID

	// index maps a page id to its position in pages.
	index map[PageID]int

	// links holds, per page index, the sorted indices of linked pages.
	links [][]int

	// linkCount is the total number of links in the graph.
	linkCount int
}

// NewLinkGraph builds a LinkGraph from an adjacency mapping.
//
// The mapping keys define the corpus. Link targets that are not keys are
// dropped, self-links are dropped and duplicate targets collapse into one
// link, so the result always satisfies the graph invariants regardless of
// what the producer passed in.
func NewLinkGraph(adjacency map[PageID][]PageID) *LinkGraph {
	pages := make([]PageID, 0, len(adjacency))
	for page := range adjacency {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	index := make(map[PageID]int, len(pages))
	for i, page := range pages {
		index[page] = i
	}

	g := &LinkGraph{
		pages: pages,
		index: index,
		links: make([][]int, len(pages)),
	}

	for i, page := range pages {
		seen := make(map[int]bool, len(adjacency[page]))
		out := make([]int, 0, len(adjacency[page]))
		for _, target := range adjacency[page] {
			j, ok := index[target]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			out = append(out, j)
		}
		sort.Ints(out)
		g.links[i] = out
		g.linkCount += len(out)
	}

	return g
}

// Len returns the number of pages in the graph.
func (g *LinkGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.pages)
}

// LinkCount returns the total number of links in the graph.
func (g *LinkGraph) LinkCount() int {
	if g == nil {
		return 0
	}
	return g.linkCount
}

// Pages returns all page ids in lexicographic order.
// The returned slice is a copy and may be modified by the caller.
func (g *LinkGraph) Pages() []PageID {
	if g == nil {
		return nil
	}
	out := make([]PageID, len(g.pages))
	copy(out, g.pages)
	return out
}

// Has reports whether page belongs to the graph.
func (g *LinkGraph) Has(page PageID) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[page]
	return ok
}

// Index returns the position of page in Pages order.
func (g *LinkGraph) Index(page PageID) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.index[page]
	return i, ok
}

// PageAt returns the page id stored at index i.
func (g *LinkGraph) PageAt(i int) PageID {
	return g.pages[i]
}

// Links returns the pages that page links to, in lexicographic order.
// It returns nil for unknown pages and for dangling pages.
func (g *LinkGraph) Links(page PageID) []PageID {
	i, ok := g.Index(page)
	if !ok || len(g.links[i]) == 0 {
		return nil
	}
	out := make([]PageID, len(g.links[i]))
	for k, j := range g.links[i] {
		out[k] = g.pages[j]
	}
	return out
}

// LinksAt returns the link indices of the page at index i.
// The slice is shared with the graph and must not be modified.
func (g *LinkGraph) LinksAt(i int) []int {
	return g.links[i]
}

// OutDegree returns the number of outbound links of page.
func (g *LinkGraph) OutDegree(page PageID) int {
	i, ok := g.Index(page)
	if !ok {
		return 0
	}
	return len(g.links[i])
}

// IsDangling reports whether page is in the graph and has no outbound links.
func (g *LinkGraph) IsDangling(page PageID) bool {
	i, ok := g.Index(page)
	return ok && len(g.links[i]) == 0
}

// Dangling returns all dangling pages in lexicographic order.
func (g *LinkGraph) Dangling() []PageID {
	if g == nil {
		return nil
	}
	out := make([]PageID, 0)
	for i, page := range g.pages {
		if len(g.links[i]) == 0 {
			out = append(out, page)
		}
	}
	return out
}

// Inbound returns, per page index, the indices of pages linking to it.
// The result is freshly allocated on every call.
func (g *LinkGraph) Inbound() [][]int {
	in := make([][]int, len(g.pages))
	for from, targets := range g.links {
		for _, to := range targets {
			in[to] = append(in[to], from)
		}
	}
	return in
}

// Adjacency returns the graph as a plain mapping, the inverse of NewLinkGraph.
// Every page is present; dangling pages map to an empty slice.
func (g *LinkGraph) Adjacency() map[PageID][]PageID {
	if g == nil {
		return map[PageID][]PageID{}
	}
	out := make(map[PageID][]PageID, len(g.pages))
	for _, page := range g.pages {
		links := g.Links(page)
		if links == nil {
			links = []PageID{}
		}
		out[page] = links
	}
	return out
}
