package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pagerank/internal/model"
)

// SimpleWriter outputs the plain text layout:
//
//	PageRank Results from Sampling (n = 10000)
//	  1.html: 0.2223
//	  ...
//	PageRank Results from Iteration
//	  1.html: 0.2202
//	  ...
//
// Verbose mode appends a summary of the corpus and the run.
type SimpleWriter struct {
	baseWriter

	// verbose adds the summary block.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the summary block.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithPrecision sets the number of decimal places for ranks.
func WithPrecision(precision int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.precision = precision
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report. Sections of estimators that produced no result
// are left out.
func (w *SimpleWriter) Write(report *model.RankReport) (int, error) {
	var sb strings.Builder

	if report.Sampling != nil {
		sb.WriteString(fmt.Sprintf("PageRank Results from %s (n = %d)\n", estimatorTitle(estimatorSampling), report.Samples))
		w.writeRanks(&sb, report.Sampling)
	}
	if report.Iteration != nil {
		sb.WriteString(fmt.Sprintf("PageRank Results from %s\n", estimatorTitle(estimatorIteration)))
		w.writeRanks(&sb, report.Iteration)
	}

	if w.verbose {
		w.writeSummary(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeRanks writes one indented line per page in page order.
func (w *SimpleWriter) writeRanks(sb *strings.Builder, dist model.Distribution) {
	for _, e := range dist.Sorted() {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", e.Page, w.formatRank(e.Rank)))
	}
}

// writeSummary writes the corpus and run details.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RankReport) {
	sb.WriteString("\nSummary\n")
	sb.WriteString(fmt.Sprintf("  Corpus:              %s\n", report.Corpus))
	sb.WriteString(fmt.Sprintf("  Pages:               %d\n", report.PageCount))
	sb.WriteString(fmt.Sprintf("  Links:               %d\n", report.LinkCount))
	sb.WriteString(fmt.Sprintf("  Dangling pages:      %s\n", joinPages(report.DanglingPages)))
	sb.WriteString(fmt.Sprintf("  Damping:             %g\n", report.Damping))
	if report.Sampling != nil {
		sb.WriteString(fmt.Sprintf("  Seed:                %d\n", report.Seed))
		sb.WriteString(fmt.Sprintf("  Walkers:             %d\n", report.Walkers))
	}
	if report.Iteration != nil {
		sb.WriteString(fmt.Sprintf("  Sweeps:              %d (epsilon %g)\n", report.Sweeps, report.Epsilon))
		if ranked := report.Iteration.ByRank(); len(ranked) > 0 {
			sb.WriteString(fmt.Sprintf("  Top page:            %s (%s)\n", ranked[0].Page, w.formatRank(ranked[0].Rank)))
		}
	}
	if report.TotalVariation >= 0 {
		sb.WriteString(fmt.Sprintf("  Total variation:     %s (%s)\n",
			w.formatRank(report.TotalVariation), report.Agreement()))
	}
	if report.ReferenceDeviation >= 0 {
		sb.WriteString(fmt.Sprintf("  Reference deviation: %.2e\n", report.ReferenceDeviation))
	}
	if report.ErrorMessage != "" {
		if report.FailedStep != "" {
			sb.WriteString(fmt.Sprintf("  Failed step:         %s\n", report.FailedStep))
		}
		sb.WriteString(fmt.Sprintf("  Error:               %s\n", report.ErrorMessage))
	}
}

// joinPages renders a page list, or "none".
func joinPages(pages []model.PageID) string {
	if len(pages) == 0 {
		return "none"
	}
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
