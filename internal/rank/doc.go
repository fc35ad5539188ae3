// Package rank implements the PageRank estimators.
//
// Two independent estimators share one transition model:
//
//   - Transition returns the random surfer's next-page distribution for a
//     page: with probability d follow one of the page's links uniformly,
//     otherwise jump to any page of the corpus uniformly. A dangling page
//     (no outbound links) jumps uniformly to every page, itself included.
//   - Sample performs a long random walk driven by Transition and reports
//     visit frequencies.
//   - Iterate computes the fixed point of the PageRank recurrence by
//     repeated snapshot sweeps until no page moves by more than epsilon.
//   - Reference computes the same fixed point with gonum's power method
//     and serves as an independent cross-check of Iterate.
//
// All estimators only read the LinkGraph. Every invocation owns its
// accumulators, so concurrent calls on the same graph are safe.
//
// # Usage
//
//	ranks, err := rank.Iterate(g, rank.DefaultDamping)
//	estimate, err := rank.Sample(g, rank.DefaultDamping, rank.DefaultSamples,
//	    rank.WithSeed(42))
package rank
