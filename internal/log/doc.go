// Package log provides the application's slog setup.
//
// The estimators log every sweep and sampling pass at debug level with
// float attributes such as "max_delta" and "rank". Printed at full float64
// precision those values are hard to scan, so PrecisionHandler wraps any
// slog.Handler and rounds float attributes to a fixed number of
// significant digits before passing the record on.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("sweep", "n", 3, "max_delta", 0.0123456789)
//	// level=DEBUG msg=sweep n=3 max_delta=0.0123457
package log
