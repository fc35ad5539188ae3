package model

import (
	"time"
)

// RankReport is the result of ranking one corpus.
// It carries the inputs of the run, both estimator results and the
// diagnostics needed to judge whether the two estimators agree.
//
// Design decision: A single flat struct keeps JSON output and database
// storage simple; the report is written once per run and read by reporters.
type RankReport struct {
	// Corpus is the location of the corpus (a directory path).
	Corpus string `json:"corpus"`

	// Digest is the SHA3-256 fingerprint of the link graph, hex encoded.
	// Two runs over the same link structure share a digest.
	Digest string `json:"digest"`

	// DateRanked is when the run started.
	DateRanked time.Time `json:"date_ranked"`

	// PageCount is the number of pages in the corpus.
	PageCount int `json:"page_count"`

	// LinkCount is the number of links between corpus pages.
	LinkCount int `json:"link_count"`

	// DanglingPages lists pages without outbound links.
	DanglingPages []PageID `json:"dangling_pages,omitempty"`

	// Damping is the damping factor used by both estimators.
	Damping float64 `json:"damping"`

	// Samples is the number of draws of the sampling estimator.
	Samples int `json:"samples"`

	// Walkers is the number of independent walks the draws were split across.
	Walkers int `json:"walkers"`

	// Seed is the seed the sampling estimator actually used, so a clock
	// seeded run can be repeated with --seed.
	Seed int64 `json:"seed"`

	// Epsilon is the convergence threshold of the iterative estimator.
	Epsilon float64 `json:"epsilon"`

	// Sampling is the result of the sampling estimator.
	Sampling Distribution `json:"sampling,omitempty"`

	// Iteration is the result of the iterative estimator.
	Iteration Distribution `json:"iteration,omitempty"`

	// Sweeps is the number of sweeps the iterative estimator needed.
	Sweeps int `json:"sweeps"`

	// TotalVariation is the total variation distance between Sampling and
	// Iteration. Negative until both results are available.
	TotalVariation float64 `json:"total_variation"`

	// ReferenceDeviation is the largest per-page difference between
	// Iteration and an independent reference implementation.
	// Negative when verification was not requested.
	ReferenceDeviation float64 `json:"reference_deviation"`

	// Graph is the ranked link graph. It is not serialized; Digest and the
	// counts above identify it in stored reports.
	Graph *LinkGraph `json:"-"`

	// Cancelled is true when the run was interrupted before all steps ran.
	Cancelled bool `json:"cancelled,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// FailedStep names the last step that returned an error.
	FailedStep string `json:"failed_step,omitempty"`

	// Error contains any error that stopped a step.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewRankReport creates an empty report for the given corpus location.
func NewRankReport(corpus string) *RankReport {
	return &RankReport{
		Corpus:             corpus,
		DateRanked:         time.Now(),
		TotalVariation:     -1,
		ReferenceDeviation: -1,
	}
}

// SetGraph records the shape and fingerprint of the ranked graph.
func (r *RankReport) SetGraph(g *LinkGraph) {
	r.Graph = g
	r.PageCount = g.Len()
	r.LinkCount = g.LinkCount()
	r.DanglingPages = g.Dangling()
	r.Digest = Digest(g)
}

// HasResults reports whether both estimator results are present.
func (r *RankReport) HasResults() bool {
	return r.Sampling != nil && r.Iteration != nil
}

// Agreement classifies how closely the two estimators agree.
// It returns AgreementUnknown until both results are available.
func (r *RankReport) Agreement() Agreement {
	if !r.HasResults() || r.TotalVariation < 0 {
		return AgreementUnknown
	}
	return ClassifyAgreement(r.TotalVariation)
}
