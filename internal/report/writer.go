package report

import (
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pagerank/internal/model"
)

// DefaultPrecision is the number of decimal places used for ranks.
const DefaultPrecision = 4

// Estimator names, in report order.
const (
	estimatorSampling  = "sampling"
	estimatorIteration = "iteration"
)

// Writer renders a RankReport somewhere.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.RankReport) (int, error)
}

// MultiWriter fans a report out to several writers, in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a MultiWriter over writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write hands report to each writer and sums the byte counts. The first
// error ends the fan-out.
func (m *MultiWriter) Write(report *model.RankReport) (int, error) {
	written := 0
	for _, w := range m.writers {
		n, err := w.Write(report)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// baseWriter holds what every format shares: the destination and the
// number of decimals printed for a rank.
type baseWriter struct {
	output    io.Writer
	precision int
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, precision: DefaultPrecision}
}

// formatRank renders a rank with the writer's precision.
func (b baseWriter) formatRank(v float64) string {
	return fmt.Sprintf("%.*f", b.precision, v)
}

// estimatorTitle returns the display name of an estimator, e.g. "Sampling".
func estimatorTitle(name string) string {
	return cases.Title(language.English).String(name)
}

// resultOf returns the distribution of the named estimator.
func resultOf(report *model.RankReport, name string) model.Distribution {
	if name == estimatorSampling {
		return report.Sampling
	}
	return report.Iteration
}
