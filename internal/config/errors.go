package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrNoCorpus is returned when no corpus directory is given.
	ErrNoCorpus = errors.New("no corpus specified: provide a corpus directory")

	// ErrInvalidDamping is returned when the damping factor is outside (0, 1).
	ErrInvalidDamping = errors.New("invalid damping factor: must be greater than 0 and less than 1")

	// ErrInvalidSamples is returned when the sample count is below 1.
	ErrInvalidSamples = errors.New("invalid sample count: must be at least 1")

	// ErrInvalidEpsilon is returned when the convergence threshold is not positive.
	ErrInvalidEpsilon = errors.New("invalid epsilon: must be positive")

	// ErrInvalidMaxSweeps is returned when the sweep cap is below 1.
	ErrInvalidMaxSweeps = errors.New("invalid max sweeps: must be at least 1")

	// ErrInvalidWalkers is returned when the walker count is below 1.
	ErrInvalidWalkers = errors.New("invalid walker count: must be at least 1")

	// ErrInvalidPrecision is returned when the number of decimal places is
	// outside [0, MaxPrecision].
	ErrInvalidPrecision = errors.New("invalid precision: must be between 0 and 15")

	// ErrInvalidConcurrency is returned when the corpus load concurrency is below 1.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
