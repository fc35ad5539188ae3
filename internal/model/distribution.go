package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Distribution maps pages to probabilities.
// A valid distribution has non-negative values that sum to 1 within
// floating point tolerance. The result of an estimator contains every page
// of its graph, including pages with probability 0.
type Distribution map[PageID]float64

// Entry is one page/probability pair of a Distribution.
type Entry struct {
	// Page is the page identifier.
	Page PageID `json:"page"`

	// Rank is the probability assigned to the page.
	Rank float64 `json:"rank"`
}

// Sorted returns the entries of d ordered by page id.
func (d Distribution) Sorted() []Entry {
	out := make([]Entry, 0, len(d))
	for page, rank := range d {
		out = append(out, Entry{Page: page, Rank: rank})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

// ByRank returns the entries of d ordered by descending rank.
// Ties are broken by page id so the order is stable.
func (d Distribution) ByRank() []Entry {
	out := d.Sorted()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	return out
}

// Sum returns the total probability mass of d.
func (d Distribution) Sum() float64 {
	return floats.Sum(d.values(d.pages()))
}

// Get returns the probability of page, 0 when the page is absent.
func (d Distribution) Get(page PageID) float64 {
	return d[page]
}

// TotalVariation returns the total variation distance between d and other:
// half the L1 distance over the union of their pages. The result is 0 for
// identical distributions and 1 for distributions with disjoint support.
func (d Distribution) TotalVariation(other Distribution) float64 {
	pages := unionPages(d, other)
	return floats.Distance(d.values(pages), other.values(pages), 1) / 2
}

// MaxAbsDiff returns the largest absolute per-page difference between d
// and other over the union of their pages.
func (d Distribution) MaxAbsDiff(other Distribution) float64 {
	pages := unionPages(d, other)
	return floats.Distance(d.values(pages), other.values(pages), math.Inf(1))
}

// pages returns the keys of d in sorted order.
func (d Distribution) pages() []PageID {
	out := make([]PageID, 0, len(d))
	for page := range d {
		out = append(out, page)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// values returns the probabilities of pages in the given order.
func (d Distribution) values(pages []PageID) []float64 {
	out := make([]float64, len(pages))
	for i, page := range pages {
		out[i] = d[page]
	}
	return out
}

// unionPages returns the sorted union of the keys of a and b.
func unionPages(a, b Distribution) []PageID {
	seen := make(map[PageID]bool, len(a)+len(b))
	out := make([]PageID, 0, len(a)+len(b))
	for _, d := range []Distribution{a, b} {
		for page := range d {
			if !seen[page] {
				seen[page] = true
				out = append(out, page)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
