package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pagerank/internal/model"
)

// Corpus loading errors.
var (
	// ErrEmptyCorpus is returned when a directory holds no HTML pages.
	ErrEmptyCorpus = errors.New("corpus contains no .html files")

	// ErrNotDirectory is returned when the corpus path is not a directory.
	ErrNotDirectory = errors.New("corpus path is not a directory")
)

const (
	// DefaultConcurrency is the default number of files parsed at once.
	DefaultConcurrency = 8

	// DefaultMaxFileSize bounds how much of a single page is read.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// pageExt is the suffix that marks a file as a corpus page.
	pageExt = ".html"
)

// loader holds the configuration of one LoadCorpus call.
type loader struct {
	concurrency int
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures LoadCorpus.
type Option func(*loader)

// WithConcurrency sets how many files are parsed in parallel.
// Values below 1 fall back to DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(l *loader) {
		l.concurrency = n
	}
}

// WithMaxFileSize limits how many bytes of each page are parsed.
// Anchors after the limit are not seen.
func WithMaxFileSize(size int64) Option {
	return func(l *loader) {
		l.maxFileSize = size
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// LoadCorpus reads every .html file of dir and returns the link graph.
//
// Subdirectories and files with other extensions are ignored. The first
// read or parse error cancels the remaining work and is returned.
func LoadCorpus(ctx context.Context, dir string, opts ...Option) (*model.LinkGraph, error) {
	l := &loader{
		concurrency: DefaultConcurrency,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = DefaultConcurrency
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}

	pages, err := listPages(dir)
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own slot.
	links := make([][]string, len(pages))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.concurrency)
	for i, name := range pages {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := l.parseFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", name, err)
			}
			links[i] = result.Links
			l.logger.Debug("parsed page", "page", name, "links", len(result.Links))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	adjacency := make(map[model.PageID][]model.PageID, len(pages))
	for i, name := range pages {
		targets := make([]model.PageID, len(links[i]))
		for k, link := range links[i] {
			targets[k] = model.PageID(link)
		}
		adjacency[model.PageID(name)] = targets
	}

	g := model.NewLinkGraph(adjacency)
	l.logger.Debug("corpus loaded",
		"dir", dir,
		"pages", g.Len(),
		"links", g.LinkCount(),
		"dangling", len(g.Dangling()),
	)
	return g, nil
}

// listPages returns the names of the page files in dir.
func listPages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	pages := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), pageExt) {
			continue
		}
		pages = append(pages, entry.Name())
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, dir)
	}
	return pages, nil
}

// parseFile parses a single page file.
func (l *loader) parseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from listing the corpus directory
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(io.LimitReader(f, l.maxFileSize))
}
