package config

import "path/filepath"

// Flag names shared by the CLI and ApplySettings.
const (
	FlagDamping     = "damping"
	FlagSamples     = "samples"
	FlagEpsilon     = "epsilon"
	FlagMaxSweeps   = "max-sweeps"
	FlagSeed        = "seed"
	FlagWalkers     = "walkers"
	FlagPrecision   = "precision"
	FlagConcurrency = "concurrency"
	FlagVerify      = "verify"
)

// Settings holds the estimator parameters that can be set in the config file.
// Zero values mean "not set" and leave the current value alone.
type Settings struct {
	// Damping overrides the damping factor.
	Damping float64 `yaml:"damping,omitempty"`

	// Samples overrides the sample count.
	Samples int `yaml:"samples,omitempty"`

	// Epsilon overrides the convergence threshold.
	Epsilon float64 `yaml:"epsilon,omitempty"`

	// MaxSweeps overrides the sweep cap.
	MaxSweeps int `yaml:"maxSweeps,omitempty"`

	// Seed fixes the sampler seed.
	Seed int64 `yaml:"seed,omitempty"`

	// Walkers overrides the number of parallel walks.
	Walkers int `yaml:"walkers,omitempty"`

	// Precision overrides the number of decimal places.
	Precision int `yaml:"precision,omitempty"`

	// Concurrency overrides how many files are parsed in parallel.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Verify enables the gonum cross-check.
	Verify bool `yaml:"verify,omitempty"`
}

// File represents the structure of the .pagerank configuration file.
type File struct {
	// Defaults applies to every corpus.
	Defaults Settings `yaml:"defaults,omitempty"`

	// Corpora maps corpus directories to their own settings, which take
	// precedence over Defaults.
	Corpora map[string]Settings `yaml:"corpora,omitempty"`
}

// GetCorpusSettings returns the settings for a corpus directory, merged
// over the defaults. The corpus is looked up by its path as given and by
// its cleaned path, so "corpus0/" and "./corpus0" find a "corpus0" entry.
func (cf *File) GetCorpusSettings(corpus string) Settings {
	result := cf.Defaults

	s, ok := cf.Corpora[corpus]
	if !ok {
		s, ok = cf.Corpora[filepath.Clean(corpus)]
	}
	if !ok {
		return result
	}

	if s.Damping != 0 {
		result.Damping = s.Damping
	}
	if s.Samples != 0 {
		result.Samples = s.Samples
	}
	if s.Epsilon != 0 {
		result.Epsilon = s.Epsilon
	}
	if s.MaxSweeps != 0 {
		result.MaxSweeps = s.MaxSweeps
	}
	if s.Seed != 0 {
		result.Seed = s.Seed
	}
	if s.Walkers != 0 {
		result.Walkers = s.Walkers
	}
	if s.Precision != 0 {
		result.Precision = s.Precision
	}
	if s.Concurrency != 0 {
		result.Concurrency = s.Concurrency
	}
	if s.Verify {
		result.Verify = true
	}

	return result
}
