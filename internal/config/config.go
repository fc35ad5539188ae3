package config

import (
	"math"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultDamping is the probability that the random surfer follows a link.
	DefaultDamping = 0.85

	// DefaultSamples is the number of random walk steps of the sampler.
	DefaultSamples = 10000

	// DefaultEpsilon is the absolute per-page convergence threshold of the
	// iterative estimator.
	DefaultEpsilon = 0.001

	// DefaultMaxSweeps caps the iterative estimator.
	DefaultMaxSweeps = 10000

	// DefaultWalkers runs the sampler as a single walk.
	DefaultWalkers = 1

	// DefaultPrecision is the number of decimal places in text reports.
	DefaultPrecision = 4

	// MaxPrecision is the largest precision a float64 can meaningfully show.
	MaxPrecision = 15

	// DefaultConcurrency is the number of corpus files parsed in parallel.
	DefaultConcurrency = 8

	// AppName is the application name used for XDG directory paths.
	AppName = "pagerank"
)

// Config holds all configuration options for a ranking run.
// It is populated from CLI flags and the optional config file and passed
// down explicitly; there is no global configuration state.
type Config struct {
	// Corpus is the directory holding the HTML pages to rank.
	Corpus string

	// Damping is the probability of following a link rather than jumping
	// to a random page.
	Damping float64

	// Samples is the number of random walk steps of the sampling estimator.
	Samples int

	// Epsilon is the convergence threshold of the iterative estimator.
	Epsilon float64

	// MaxSweeps is the number of sweeps after which iteration gives up.
	MaxSweeps int

	// Seed makes sampling reproducible. 0 means seed from the clock.
	Seed int64

	// Walkers splits the sampling steps across parallel random walks.
	Walkers int

	// Precision is the number of decimal places in the text report.
	Precision int

	// Concurrency is the number of corpus files parsed in parallel.
	Concurrency int

	// Verify cross-checks the iterative result against gonum's PageRank.
	Verify bool

	// Verbose enables debug logging and the summary block of the text report.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// CorpusConfigs holds the settings loaded from the config file, if any.
	CorpusConfigs *File

	// DBDir is the directory of the run history database.
	DBDir string

	// SaveToDB stores the finished run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Damping:     DefaultDamping,
		Samples:     DefaultSamples,
		Epsilon:     DefaultEpsilon,
		MaxSweeps:   DefaultMaxSweeps,
		Walkers:     DefaultWalkers,
		Precision:   DefaultPrecision,
		Concurrency: DefaultConcurrency,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pagerank.
// On Linux: ~/.local/share/pagerank
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagerank.
// On Linux: ~/.config/pagerank
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.Corpus == "" {
		return ErrNoCorpus
	}

	// Both ends of the interval degenerate: 0 ignores links and 1 removes
	// the random jump.
	if math.IsNaN(c.Damping) || c.Damping <= 0 || c.Damping >= 1 {
		return ErrInvalidDamping
	}

	if c.Samples < 1 {
		return ErrInvalidSamples
	}

	if math.IsNaN(c.Epsilon) || c.Epsilon <= 0 {
		return ErrInvalidEpsilon
	}

	if c.MaxSweeps < 1 {
		return ErrInvalidMaxSweeps
	}

	if c.Walkers < 1 {
		return ErrInvalidWalkers
	}

	if c.Precision < 0 || c.Precision > MaxPrecision {
		return ErrInvalidPrecision
	}

	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ApplySettings copies the non-zero values of s into c.
// explicit reports whether the user set the CLI flag of that name; such
// values are kept, so command line flags always win over the file.
func (c *Config) ApplySettings(s Settings, explicit func(flag string) bool) {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	if s.Damping != 0 && !explicit(FlagDamping) {
		c.Damping = s.Damping
	}
	if s.Samples != 0 && !explicit(FlagSamples) {
		c.Samples = s.Samples
	}
	if s.Epsilon != 0 && !explicit(FlagEpsilon) {
		c.Epsilon = s.Epsilon
	}
	if s.MaxSweeps != 0 && !explicit(FlagMaxSweeps) {
		c.MaxSweeps = s.MaxSweeps
	}
	if s.Seed != 0 && !explicit(FlagSeed) {
		c.Seed = s.Seed
	}
	if s.Walkers != 0 && !explicit(FlagWalkers) {
		c.Walkers = s.Walkers
	}
	if s.Precision != 0 && !explicit(FlagPrecision) {
		c.Precision = s.Precision
	}
	if s.Concurrency != 0 && !explicit(FlagConcurrency) {
		c.Concurrency = s.Concurrency
	}
	if s.Verify && !explicit(FlagVerify) {
		c.Verify = true
	}
}
