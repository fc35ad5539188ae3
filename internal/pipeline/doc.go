// Package pipeline runs the stages of a ranking run in sequence.
//
// A run loads the corpus, runs the sampling and iterative estimators,
// optionally cross-checks the iterative result against gonum, and finally
// measures how far the two estimates are apart. Each stage is a Step that
// receives the report built so far and adds to it.
//
// BatchProcessor ranks several corpora concurrently with one fresh
// pipeline per corpus, with the concurrency bounded by errgroup.
package pipeline
