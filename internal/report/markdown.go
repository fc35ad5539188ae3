package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pagerank/internal/model"
)

// referenceWarnThreshold is the reference deviation that triggers an alert.
const referenceWarnThreshold = 1e-2

// pieScale converts ranks to the integer slice values of the pie chart.
const pieScale = 10000

// MarkdownWriter outputs reports in GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownPrecision sets the number of decimal places for ranks.
func WithMarkdownPrecision(precision int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.precision = precision
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RankReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeRanks(md, report)
	w.writeAlert(md, report)
	if report.Iteration != nil {
		w.writePieChart(md, report.Iteration)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RankReport) {
	md.H1("PageRank Report")
	md.PlainText("")

	rows := [][]string{
		{"Corpus", "`" + report.Corpus + "`"},
		{"Ranked", report.DateRanked.Format("2006-01-02 15:04:05 MST")},
		{"Pages", strconv.Itoa(report.PageCount)},
		{"Links", strconv.Itoa(report.LinkCount)},
		{"Dangling Pages", joinPages(report.DanglingPages)},
		{"Damping", strconv.FormatFloat(report.Damping, 'g', -1, 64)},
	}
	if report.Sampling != nil {
		rows = append(rows,
			[]string{"Samples", strconv.Itoa(report.Samples)},
			[]string{"Seed", strconv.FormatInt(report.Seed, 10)},
		)
	}
	if report.Iteration != nil {
		rows = append(rows, []string{"Sweeps", fmt.Sprintf("%d (epsilon %g)", report.Sweeps, report.Epsilon)})
	}
	if report.TotalVariation >= 0 {
		rows = append(rows, []string{"Total Variation", w.formatRank(report.TotalVariation)})
	}
	if report.ReferenceDeviation >= 0 {
		rows = append(rows, []string{"Reference Deviation", fmt.Sprintf("%.2e", report.ReferenceDeviation)})
	}
	rows = append(rows, []string{"Status", w.getStatusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RankReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeRanks writes one row per page with both estimates side by side.
func (w *MarkdownWriter) writeRanks(md *markdown.Markdown, report *model.RankReport) {
	md.H2("Ranks")
	md.PlainText("")

	estimators := make([]string, 0, 2)
	for _, name := range []string{estimatorSampling, estimatorIteration} {
		if resultOf(report, name) != nil {
			estimators = append(estimators, name)
		}
	}
	if len(estimators) == 0 {
		md.PlainText("No ranks computed.")
		md.PlainText("")
		return
	}

	header := []string{"Page"}
	for _, name := range estimators {
		header = append(header, estimatorTitle(name))
	}
	both := len(estimators) == 2
	if both {
		header = append(header, "Difference")
	}

	// Row set is the iteration result when present; it always holds every page.
	pages := resultOf(report, estimators[len(estimators)-1]).Sorted()
	rows := make([][]string, len(pages))
	for i, e := range pages {
		row := []string{"`" + string(e.Page) + "`"}
		for _, name := range estimators {
			row = append(row, w.formatRank(resultOf(report, name).Get(e.Page)))
		}
		if both {
			diff := math.Abs(report.Sampling.Get(e.Page) - report.Iteration.Get(e.Page))
			row = append(row, w.formatRank(diff))
		}
		rows[i] = row
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert describing how well the estimators agree.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RankReport) {
	if report.ErrorMessage != "" {
		md.Cautionf("The run did not complete: %s", report.ErrorMessage)
		md.PlainText("")
		return
	}

	agreement := report.Agreement()
	switch agreement {
	case model.AgreementWeak:
		md.Warningf(
			"Sampling and iteration disagree (total variation %s). Increase the number of samples.",
			w.formatRank(report.TotalVariation),
		)
	case model.AgreementModerate:
		md.Note(fmt.Sprintf(
			"Sampling and iteration roughly agree (total variation %s).",
			w.formatRank(report.TotalVariation),
		))
	case model.AgreementStrong:
		md.Tip(fmt.Sprintf(
			"Sampling and iteration agree (total variation %s).",
			w.formatRank(report.TotalVariation),
		))
	}
	if agreement != model.AgreementUnknown {
		md.PlainText("")
	}

	if report.ReferenceDeviation > referenceWarnThreshold {
		md.Importantf("Iteration deviates from the reference implementation by %.2e.", report.ReferenceDeviation)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the iteration ranks.
// Slice values are ranks scaled to integers.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, dist model.Distribution) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(fmt.Sprintf("%s Ranks (per %d)", estimatorTitle(estimatorIteration), pieScale)),
		piechart.WithShowData(true),
	)

	for _, e := range dist.Sorted() {
		value := uint64(math.Round(e.Rank * pieScale))
		if value == 0 {
			continue
		}
		chart.LabelAndIntValue(string(e.Page), value)
	}

	md.H2("Distribution")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by pagerank*")
}
