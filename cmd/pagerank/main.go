// Package main provides the entry point for the pagerank CLI.
//
// pagerank estimates the PageRank of every page in a directory of HTML
// files, once by random surfer sampling and once by iterating the PageRank
// recurrence to convergence, and prints both results side by side.
//
// Usage:
//
//	pagerank corpus0
//	pagerank --samples 100000 --seed 42 corpus0
//	pagerank batch corpus0 corpus1 corpus2
//
// See --help for all available options.
package main

// main is the entry point for pagerank.
func main() {
	Execute()
}
