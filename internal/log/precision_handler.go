package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
)

// DefaultDigits is the number of significant digits kept by NewLogger.
const DefaultDigits = 6

// PrecisionHandler wraps an slog.Handler and rounds float64 attribute values
// to a fixed number of significant digits. Attributes of other kinds pass
// through unchanged.
type PrecisionHandler struct {
	// handler is the underlying slog handler that receives rounded records.
	handler slog.Handler

	// digits is the number of significant digits kept.
	digits int
}

// NewPrecisionHandler creates a PrecisionHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used. digits below 1 fall
// back to DefaultDigits.
func NewPrecisionHandler(handler slog.Handler, digits int) *PrecisionHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if digits < 1 {
		digits = DefaultDigits
	}
	return &PrecisionHandler{handler: handler, digits: digits}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PrecisionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rounds the record's attributes and passes it to the underlying handler.
func (h *PrecisionHandler) Handle(ctx context.Context, r slog.Record) error {
	rounded := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rounded.AddAttrs(h.roundAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rounded)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PrecisionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rounded := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rounded[i] = h.roundAttr(a)
	}
	return &PrecisionHandler{handler: h.handler.WithAttrs(rounded), digits: h.digits}
}

// WithGroup returns a new handler with the given group name.
func (h *PrecisionHandler) WithGroup(name string) slog.Handler {
	return &PrecisionHandler{handler: h.handler.WithGroup(name), digits: h.digits}
}

// roundAttr rounds a single attribute, recursively handling groups.
func (h *PrecisionHandler) roundAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		rounded := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rounded[i] = h.roundAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rounded...)}
	case slog.KindFloat64:
		return slog.Float64(a.Key, roundSignificant(v.Float64(), h.digits))
	default:
		return a
	}
}

// roundSignificant rounds f to the given number of significant digits.
// NaN and infinities are returned unchanged.
func roundSignificant(f float64, digits int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', digits, 64), 64)
	if err != nil {
		return f
	}
	return r
}

// NewLogger creates a new text slog.Logger whose float attributes are
// rounded to DefaultDigits significant digits.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPrecisionHandler(slog.NewTextHandler(w, handlerOptions(verbose)), DefaultDigits))
}

// NewJSONLogger creates a new JSON slog.Logger whose float attributes are
// rounded to DefaultDigits significant digits.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPrecisionHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), DefaultDigits))
}

// handlerOptions returns Debug level when verbose, Warn otherwise.
func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
