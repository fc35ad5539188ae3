package model

import (
	"testing"
	"time"
)

// TestNewRankReport tests the RankReport constructor.
func TestNewRankReport(t *testing.T) {
	t.Parallel()

	report := NewRankReport("corpus0")

	t.Run("sets corpus", func(t *testing.T) {
		t.Parallel()
		if report.Corpus != "corpus0" {
			t.Errorf("got %q, expected %q", report.Corpus, "corpus0")
		}
	})

	t.Run("sets timestamp", func(t *testing.T) {
		t.Parallel()
		if report.DateRanked.IsZero() || time.Since(report.DateRanked) > time.Second {
			t.Error("expected recent DateRanked")
		}
	})

	t.Run("diagnostics start unknown", func(t *testing.T) {
		t.Parallel()
		if report.TotalVariation >= 0 || report.ReferenceDeviation >= 0 {
			t.Error("expected negative diagnostics")
		}
		if report.Agreement() != AgreementUnknown {
			t.Errorf("got %v, expected UNKNOWN", report.Agreement())
		}
	})
}

// TestRankReportSetGraph tests graph metadata recording.
func TestRankReportSetGraph(t *testing.T) {
	t.Parallel()

	g := NewLinkGraph(map[PageID][]PageID{
		"a.html": {"b.html"},
		"b.html": nil,
	})
	report := NewRankReport("corpus")
	report.SetGraph(g)

	if report.PageCount != 2 {
		t.Errorf("got %d pages, expected 2", report.PageCount)
	}
	if report.LinkCount != 1 {
		t.Errorf("got %d links, expected 1", report.LinkCount)
	}
	if len(report.DanglingPages) != 1 || report.DanglingPages[0] != "b.html" {
		t.Errorf("unexpected dangling pages: %v", report.DanglingPages)
	}
	if len(report.Digest) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(report.Digest))
	}
	if report.Graph != g {
		t.Error("expected the graph to be kept on the report")
	}
}

// TestClassifyAgreement tests agreement thresholds.
func TestClassifyAgreement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tv   float64
		want Agreement
	}{
		{-1, AgreementUnknown},
		{0, AgreementStrong},
		{StrongAgreementThreshold, AgreementStrong},
		{0.05, AgreementModerate},
		{WeakAgreementThreshold, AgreementModerate},
		{0.5, AgreementWeak},
	}

	for _, tt := range tests {
		if got := ClassifyAgreement(tt.tv); got != tt.want {
			t.Errorf("ClassifyAgreement(%v) = %v, expected %v", tt.tv, got, tt.want)
		}
	}
}

// TestAgreementString tests the String method.
func TestAgreementString(t *testing.T) {
	t.Parallel()

	want := map[Agreement]string{
		AgreementUnknown:  "UNKNOWN",
		AgreementWeak:     "WEAK",
		AgreementModerate: "MODERATE",
		AgreementStrong:   "STRONG",
	}
	for a, s := range want {
		if a.String() != s {
			t.Errorf("got %q, expected %q", a.String(), s)
		}
	}
}

// TestDigest tests that the digest depends only on link structure.
func TestDigest(t *testing.T) {
	t.Parallel()

	a := NewLinkGraph(map[PageID][]PageID{"1.html": {"2.html"}, "2.html": nil})
	b := NewLinkGraph(map[PageID][]PageID{"2.html": {}, "1.html": {"2.html", "2.html", "x.html"}})
	c := NewLinkGraph(map[PageID][]PageID{"1.html": nil, "2.html": {"1.html"}})

	if Digest(a) != Digest(b) {
		t.Error("equal link structures must share a digest")
	}
	if Digest(a) == Digest(c) {
		t.Error("different link structures must not share a digest")
	}
}
