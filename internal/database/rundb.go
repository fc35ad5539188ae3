package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pagerank/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "pagerank.db"

// ErrInvalidLimit is returned when a query limit is not positive.
var ErrInvalidLimit = errors.New("limit must be at least 1")

// RunDB provides SQLite-based storage for ranking runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// With CreateIfNotExists unset a missing database file is an error.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the location of the database file.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		corpus TEXT NOT NULL,
		digest TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		page_count INTEGER NOT NULL,
		damping REAL NOT NULL,
		samples INTEGER NOT NULL,
		epsilon REAL NOT NULL,
		seed INTEGER NOT NULL,
		sweeps INTEGER NOT NULL,
		total_variation REAL NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_corpus ON runs(corpus);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// CorpusKey returns the key a corpus location is stored under: its
// absolute, cleaned path. It falls back to the cleaned path as given.
func CorpusKey(corpus string) string {
	abs, err := filepath.Abs(corpus)
	if err != nil {
		return filepath.Clean(corpus)
	}
	return abs
}

// SaveRun stores a finished report and returns its ID.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RankReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (corpus, digest, timestamp, page_count, damping, samples, epsilon,
		seed, sweeps, total_variation, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		CorpusKey(report.Corpus),
		report.Digest,
		report.DateRanked.UTC().Format(timestampLayout),
		report.PageCount,
		report.Damping,
		report.Samples,
		report.Epsilon,
		report.Seed,
		report.Sweeps,
		report.TotalVariation,
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// ListCorpora returns every corpus with at least one saved run.
func (rdb *RunDB) ListCorpora(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT corpus FROM runs
	ORDER BY corpus
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpora: %w", err)
	}
	defer rows.Close()

	var corpora []string
	for rows.Next() {
		var corpus string
		if err := rows.Scan(&corpus); err != nil {
			return nil, fmt.Errorf("failed to scan corpus: %w", err)
		}
		corpora = append(corpora, corpus)
	}

	return corpora, rows.Err()
}

// RunMetadata contains summary information about a saved run.
// It is used for listing history without loading full reports.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Corpus is the absolute corpus path.
	Corpus string

	// Digest is the link graph digest.
	Digest string

	// Timestamp is when the run started.
	Timestamp time.Time

	// PageCount is the number of pages ranked.
	PageCount int

	Damping float64
	Samples int
	Epsilon float64
	Seed    int64
	Sweeps  int

	// TotalVariation is the estimator distance, negative when unknown.
	TotalVariation float64

	// Error is the error message of a failed run.
	Error string
}

// Agreement classifies the run's total variation.
func (m RunMetadata) Agreement() model.Agreement {
	return model.ClassifyAgreement(m.TotalVariation)
}

// GetRunHistory returns metadata of every run of corpus, newest first.
func (rdb *RunDB) GetRunHistory(ctx context.Context, corpus string) ([]RunMetadata, error) {
	query := `
	SELECT id, corpus, digest, timestamp, page_count, damping, samples, epsilon,
		seed, sweeps, total_variation, error
	FROM runs
	WHERE corpus = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, CorpusKey(corpus))
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		err := rows.Scan(
			&meta.ID,
			&meta.Corpus,
			&meta.Digest,
			&timestamp,
			&meta.PageCount,
			&meta.Damping,
			&meta.Samples,
			&meta.Epsilon,
			&meta.Seed,
			&meta.Sweeps,
			&meta.TotalVariation,
			&meta.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRunByID retrieves a full report by its database ID.
// It returns nil without error when no such run exists.
func (rdb *RunDB) GetRunByID(ctx context.Context, id int64) (*model.RankReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeReport(reportJSON)
}

// GetLatestRuns returns up to limit full reports whose link graph has the
// given digest, newest first.
func (rdb *RunDB) GetLatestRuns(ctx context.Context, digest string, limit int) ([]*model.RankReport, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	query := `
	SELECT report_json FROM runs
	WHERE digest = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, digest, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.RankReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		report, err := decodeReport(reportJSON)
		if err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// decodeReport parses a stored report.
func decodeReport(reportJSON string) (*model.RankReport, error) {
	var report model.RankReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.ErrorMessage != "" {
		report.Error = errors.New(report.ErrorMessage)
	}
	return &report, nil
}

// timestampLayout is the layout run timestamps are written in. It sorts
// lexicographically in time order.
const timestampLayout = "2006-01-02 15:04:05.000"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
