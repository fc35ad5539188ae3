// Package model holds the types shared by the crawler, the estimators, the
// report writers and the run database:
//
//   - LinkGraph, the immutable link structure of a corpus
//   - Distribution, a page to probability mapping produced by an estimator
//   - RankReport, everything recorded about one ranking run
//   - Agreement, how closely the sampling and iterative estimates match
//
// RankReport and Distribution round trip through JSON; that encoding is used
// both for --json output and for the report blobs stored in the database.
package model
