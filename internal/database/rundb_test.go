package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/pagerank/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestReport creates a finished report for corpus ranked at the given time.
func createTestReport(corpus string, ranked time.Time, rank2 float64) *model.RankReport {
	report := model.NewRankReport(corpus)
	report.DateRanked = ranked
	report.SetGraph(model.NewLinkGraph(map[model.PageID][]model.PageID{
		"1.html": {"2.html"},
		"2.html": {"1.html", "3.html"},
		"3.html": {"2.html"},
	}))
	report.Damping = 0.85
	report.Samples = 10000
	report.Walkers = 1
	report.Seed = 7
	report.Epsilon = 0.001
	report.Sweeps = 36
	rest := (1 - rank2) / 2
	report.Sampling = model.Distribution{"1.html": rest, "2.html": rank2, "3.html": rest}
	report.Iteration = model.Distribution{"1.html": 0.2568, "2.html": 0.4864, "3.html": 0.2568}
	report.TotalVariation = report.Sampling.TotalVariation(report.Iteration)
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})

	t.Run("opening twice keeps the schema", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		ctx := context.Background()

		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveRun(ctx, createTestReport("/corpus", time.Now(), 0.48)); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		corpora, err := db.ListCorpora(ctx)
		if err != nil {
			t.Fatalf("failed to list corpora: %v", err)
		}
		if len(corpora) != 1 {
			t.Errorf("expected 1 corpus after reopen, got %d", len(corpora))
		}
	})
}

// TestDefaultOptions tests the default database options.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestCorpusKey tests corpus path normalization.
func TestCorpusKey(t *testing.T) {
	t.Parallel()

	if got := CorpusKey("/data/corpus/"); got != "/data/corpus" {
		t.Errorf("expected /data/corpus, got %s", got)
	}

	got := CorpusKey("corpus0")
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
	if filepath.Base(got) != "corpus0" {
		t.Errorf("expected base corpus0, got %s", got)
	}
}

// TestSaveAndGetRun tests the report round trip.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	t.Run("round trips a report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := createTestReport("/data/corpus0", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), 0.48)

		id, err := db.SaveRun(ctx, report)
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if id <= 0 {
			t.Errorf("expected positive id, got %d", id)
		}

		got, err := db.GetRunByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got == nil {
			t.Fatal("expected run, got nil")
		}

		if got.Corpus != report.Corpus {
			t.Errorf("expected corpus %s, got %s", report.Corpus, got.Corpus)
		}
		if got.Digest != report.Digest {
			t.Errorf("expected digest %s, got %s", report.Digest, got.Digest)
		}
		if got.Seed != 7 || got.Sweeps != 36 || got.Samples != 10000 {
			t.Errorf("unexpected run parameters: %+v", got)
		}
		if got.Iteration["2.html"] != 0.4864 {
			t.Errorf("expected iteration rank 0.4864, got %v", got.Iteration["2.html"])
		}
		if got.TotalVariation != report.TotalVariation {
			t.Errorf("expected total variation %v, got %v", report.TotalVariation, got.TotalVariation)
		}
		if got.Graph != nil {
			t.Error("expected graph to be absent from stored report")
		}
	})

	t.Run("restores the error of a failed run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := createTestReport("/data/failed", time.Now(), 0.48)
		report.Iteration = nil
		report.Error = errors.New("did not converge")
		report.ErrorMessage = report.Error.Error()

		id, err := db.SaveRun(ctx, report)
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		got, err := db.GetRunByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Error == nil || got.Error.Error() != "did not converge" {
			t.Errorf("expected restored error, got %v", got.Error)
		}
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		got, err := db.GetRunByID(context.Background(), 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

// TestListCorpora tests listing corpora with saved runs.
func TestListCorpora(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	corpora, err := db.ListCorpora(ctx)
	if err != nil {
		t.Fatalf("failed to list corpora: %v", err)
	}
	if len(corpora) != 0 {
		t.Errorf("expected no corpora, got %v", corpora)
	}

	for _, corpus := range []string{"/data/b", "/data/a", "/data/b"} {
		if _, err := db.SaveRun(ctx, createTestReport(corpus, time.Now(), 0.48)); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	corpora, err = db.ListCorpora(ctx)
	if err != nil {
		t.Fatalf("failed to list corpora: %v", err)
	}
	if len(corpora) != 2 || corpora[0] != "/data/a" || corpora[1] != "/data/b" {
		t.Errorf("expected [/data/a /data/b], got %v", corpora)
	}
}

// TestGetRunHistory tests run metadata listing.
func TestGetRunHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		report := createTestReport("/data/corpus0", base.Add(time.Duration(i)*time.Hour), 0.48)
		report.Seed = int64(i + 1)
		if _, err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	if _, err := db.SaveRun(ctx, createTestReport("/data/other", base, 0.48)); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	history, err := db.GetRunHistory(ctx, "/data/corpus0/")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(history))
	}

	// Newest first.
	for i, want := range []int64{3, 2, 1} {
		if history[i].Seed != want {
			t.Errorf("history[%d]: expected seed %d, got %d", i, want, history[i].Seed)
		}
	}
	if !history[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected timestamp %v, got %v", base.Add(2*time.Hour), history[0].Timestamp)
	}
	if history[0].PageCount != 3 || history[0].Damping != 0.85 {
		t.Errorf("unexpected metadata: %+v", history[0])
	}
	if history[0].Agreement() != model.AgreementStrong {
		t.Errorf("expected STRONG agreement, got %s", history[0].Agreement())
	}
}

// TestGetLatestRuns tests fetching the newest runs of a link graph.
func TestGetLatestRuns(t *testing.T) {
	t.Parallel()

	t.Run("newest first across corpus paths", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		old := createTestReport("/data/old-location", base, 0.40)
		mid := createTestReport("/data/corpus0", base.Add(time.Hour), 0.45)
		latest := createTestReport("/data/corpus0", base.Add(2*time.Hour), 0.48)
		for _, r := range []*model.RankReport{mid, old, latest} {
			if _, err := db.SaveRun(ctx, r); err != nil {
				t.Fatalf("failed to save run: %v", err)
			}
		}

		runs, err := db.GetLatestRuns(ctx, latest.Digest, 2)
		if err != nil {
			t.Fatalf("failed to get latest runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Sampling["2.html"] != 0.48 || runs[1].Sampling["2.html"] != 0.45 {
			t.Errorf("unexpected order: %v, %v", runs[0].Sampling, runs[1].Sampling)
		}

		all, err := db.GetLatestRuns(ctx, latest.Digest, 10)
		if err != nil {
			t.Fatalf("failed to get latest runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
	})

	t.Run("unknown digest returns nothing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		runs, err := db.GetLatestRuns(context.Background(), "deadbeef", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, err := db.GetLatestRuns(context.Background(), "deadbeef", 0)
		if !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})
}

// TestParseTimestamp tests timestamp parsing across formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)
	tests := []string{
		"2025-03-01 12:30:45.000",
		"2025-03-01 12:30:45",
		"2025-03-01T12:30:45Z",
		"2025-03-01T12:30:45",
		"2025-03-01T12:30:45+00:00",
	}
	for _, input := range tests {
		if got := parseTimestamp(input); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", input, got, want)
		}
	}

	if got := parseTimestamp("not a time"); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}
