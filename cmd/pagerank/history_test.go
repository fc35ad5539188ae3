package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pagerank/internal/model"
)

// saveChainRuns ranks a chain corpus with each seed and saves the runs.
func saveChainRuns(t *testing.T, dbDir string, seeds ...string) string {
	t.Helper()

	corpus := writeCorpus(t, chainPages)
	cfgPath := writeConfig(t, "")
	for _, seed := range seeds {
		if _, _, err := execute(t, "-c", cfgPath, "--save", "--db-dir", dbDir, "--seed", seed, corpus); err != nil {
			t.Fatalf("failed to rank: %v", err)
		}
	}
	return corpus
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Name() != "history" {
		t.Errorf("expected name 'history', got %q", cmd.Name())
	}
	for _, name := range []string{"compare", "id", "json"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestRunHistory tests listing and comparing saved runs.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	t.Run("no database", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No saved runs") {
			t.Errorf("expected no runs message, got %q", stdout)
		}
	})

	t.Run("lists corpora and runs", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		corpus := saveChainRuns(t, dbDir, "11", "12")

		stdout, _, err := execute(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, corpus) {
			t.Errorf("expected corpus in list:\n%s", stdout)
		}

		stdout, _, err = execute(t, "history", "--db-dir", dbDir, corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Runs of "+corpus+" (2):") {
			t.Errorf("expected two runs:\n%s", stdout)
		}
		if strings.Index(stdout, " 12 ") > strings.Index(stdout, " 11 ") {
			t.Errorf("expected newest run first:\n%s", stdout)
		}
	})

	t.Run("shows a run by id", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		saveChainRuns(t, dbDir, "21")

		stdout, _, err := execute(t, "history", "--db-dir", dbDir, "--id", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		summary := strings.Index(stdout, "\nSummary")
		if summary < 0 || !strings.HasSuffix(stdout[:summary], chainIteration) {
			t.Errorf("expected stored iteration ranks:\n%s", stdout)
		}
		if !strings.Contains(stdout, "Seed:                21") {
			t.Errorf("expected stored seed:\n%s", stdout)
		}

		if _, _, err := execute(t, "history", "--db-dir", dbDir, "--id", "99"); err == nil {
			t.Error("expected error for unknown id")
		}
	})

	t.Run("compares the latest runs", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		corpus := saveChainRuns(t, dbDir, "31", "32")

		stdout, _, err := execute(t, "history", "--db-dir", dbDir, "--compare", corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Comparing runs of "+corpus) {
			t.Errorf("expected comparison header:\n%s", stdout)
		}
		for _, page := range []string{"1.html", "2.html", "3.html"} {
			if !strings.Contains(stdout, page) {
				t.Errorf("expected %s in comparison:\n%s", page, stdout)
			}
		}

		stdout, _, err = execute(t, "history", "--db-dir", dbDir, "--compare", "-j", corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result ComparisonResult
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(result.Changes) != 3 {
			t.Fatalf("expected 3 changes, got %d", len(result.Changes))
		}
		// Iteration does not depend on the seed.
		for _, c := range result.Changes {
			if c.Direction != directionUnchanged {
				t.Errorf("%s: expected unchanged, got %s", c.Page, c.Direction)
			}
		}
	})

	t.Run("compare needs two runs", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		corpus := saveChainRuns(t, dbDir, "41")

		_, _, err := execute(t, "history", "--db-dir", dbDir, "--compare", corpus)
		if !errors.Is(err, errTooFewRuns) {
			t.Errorf("expected errTooFewRuns, got %v", err)
		}
	})

	t.Run("compare needs a corpus", func(t *testing.T) {
		t.Parallel()

		if _, _, err := execute(t, "history", "--db-dir", t.TempDir(), "--compare"); err == nil {
			t.Error("expected error without corpus")
		}
	})
}

// TestCompareRuns tests the rank change computation.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	previous := model.NewRankReport("/data/old")
	previous.DateRanked = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	previous.Damping = 0.85
	previous.Iteration = model.Distribution{"a": 0.5, "b": 0.3, "c": 0.2}

	current := model.NewRankReport("/data/new")
	current.DateRanked = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	current.Damping = 0.9
	current.Iteration = model.Distribution{"a": 0.4, "b": 0.30001, "c": 0.29999}

	result := compareRuns(previous, current)

	if result.PreviousCorpus != "/data/old" || result.CurrentCorpus != "/data/new" {
		t.Errorf("unexpected corpora: %+v", result)
	}
	if result.CurrentRanked != "2025-01-02 00:00:00" {
		t.Errorf("unexpected ranked time %q", result.CurrentRanked)
	}

	want := []struct {
		page      model.PageID
		direction string
	}{
		{"a", directionDown},
		{"c", directionUp},
		{"b", directionUnchanged},
	}
	if len(result.Changes) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(result.Changes))
	}
	for i, w := range want {
		got := result.Changes[i]
		if got.Page != w.page || got.Direction != w.direction {
			t.Errorf("changes[%d]: expected %s %s, got %s %s", i, w.page, w.direction, got.Page, got.Direction)
		}
	}
}

// TestFormatDirection tests change direction markers.
func TestFormatDirection(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		directionUp:        "↑",
		directionDown:      "↓",
		directionUnchanged: "",
	}
	for direction, want := range tests {
		if got := formatDirection(direction); got != want {
			t.Errorf("formatDirection(%q) = %q, want %q", direction, got, want)
		}
	}

	if got := formatDelta(-0.1); got != "  -0.1000" {
		t.Errorf("formatDelta(-0.1) = %q", got)
	}
}
