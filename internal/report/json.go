package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/pagerank/internal/model"
)

// JSONWriter encodes reports as one JSON document per Write.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter returns a JSONWriter that writes compact JSON to output
// unless configured otherwise.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes report followed by a newline.
func (w *JSONWriter) Write(report *model.RankReport) (int, error) {
	return w.encode(report)
}

func (w *JSONWriter) encode(v any) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetIndent("", w.indent)
	err := enc.Encode(v)
	return cw.n, err
}

// countingWriter counts the bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// JSONReport is the document written by FullJSONWriter.
type JSONReport struct {
	Version   string            `json:"version"`
	Agreement model.Agreement   `json:"agreement"`
	Report    *model.RankReport `json:"report"`
}

// NewJSONReport wraps report together with the tool version and the
// agreement class of its estimates.
func NewJSONReport(report *model.RankReport, version string) *JSONReport {
	return &JSONReport{
		Version:   version,
		Agreement: report.Agreement(),
		Report:    report,
	}
}

// FullJSONWriter writes reports wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter returns a FullJSONWriter stamping documents with version.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write encodes the wrapped report.
func (w *FullJSONWriter) Write(report *model.RankReport) (int, error) {
	return w.encode(NewJSONReport(report, w.version))
}
