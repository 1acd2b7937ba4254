// Package flatten walks a catalog, reads the material file of every page and
// collects the normalized records into a store.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/ria/internal/catalog"
	"github.com/lehigh-university-libraries/ria/internal/material"
	"github.com/lehigh-university-libraries/ria/internal/numeric"
	"github.com/lehigh-university-libraries/ria/internal/store"
)

// ErrRead is wrapped when a page's material file cannot be read.
var ErrRead = errors.New("failed to read material file")

// Stage names the step at which a page was dropped.
type Stage string

const (
	StageRead    Stage = "read"
	StageSchema  Stage = "schema"
	StageNumeric Stage = "numeric"
)

func stageOf(err error) Stage {
	switch {
	case errors.Is(err, ErrRead):
		return StageRead
	case errors.Is(err, numeric.ErrParse):
		return StageNumeric
	default:
		return StageSchema
	}
}

// Skip records a page left out of the store.
type Skip struct {
	Key   string
	Path  string
	Stage Stage
	Err   error
}

// Summary describes a finished build.
type Summary struct {
	Pages       int
	Inserted    int
	Overwritten int
	Skipped     []Skip
}

// DefaultWorkers is the page concurrency used when none is configured.
const DefaultWorkers = 4

// Engine builds stores from catalogs.
type Engine struct {
	reader  FileReader
	workers int
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many pages are processed at once. Values below one
// mean sequential processing.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func New(reader FileReader, opts ...Option) *Engine {
	e := &Engine{
		reader:  reader,
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pageResult struct {
	item store.Item
	err  error
}

// Flatten builds a store from cat. Pages that cannot be read, decoded or
// parsed are skipped and reported in the summary; they never fail the build.
// Pages are processed concurrently but inserted in document order, so for a
// duplicate composite key the later page wins. The only error returned is the
// context's, in which case the partial store is discarded.
func (e *Engine) Flatten(ctx context.Context, cat catalog.Catalog) (*store.Store, Summary, error) {
	refs := slices.Collect(cat.Pages())
	results := make([]pageResult, len(refs))

	e.logger.Info("Flattening catalog", "shelves", len(cat), "pages", len(refs), "workers", e.workers)

	if err := e.processAll(ctx, refs, results); err != nil {
		return nil, Summary{}, err
	}

	s := store.New()
	summary := Summary{Pages: len(refs)}

	for i, ref := range refs {
		key := store.Key(ref.ShelfKey, ref.BookKey, string(ref.Page.Key))
		result := results[i]

		if result.err != nil {
			skip := Skip{Key: key, Path: ref.Page.Data, Stage: stageOf(result.err), Err: result.err}
			summary.Skipped = append(summary.Skipped, skip)
			e.logger.Warn("Skipping page", "key", key, "path", skip.Path, "stage", skip.Stage, "err", skip.Err)
			continue
		}

		if _, exists := s.Get(key); exists {
			summary.Overwritten++
			e.logger.Warn("Duplicate key, replacing earlier page", "key", key, "path", ref.Page.Data)
		} else {
			summary.Inserted++
		}
		s.Insert(key, result.item)
		e.logger.Debug("Inserted page", "key", key, "entries", len(result.item.Data))
	}

	e.logger.Info("Catalog flattened",
		"pages", summary.Pages,
		"items", s.Len(),
		"skipped", len(summary.Skipped),
		"overwritten", summary.Overwritten)

	return s, summary, nil
}

// processAll fills results[i] for refs[i] using at most e.workers goroutines.
func (e *Engine) processAll(ctx context.Context, refs []catalog.PageRef, results []pageResult) error {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.workers)

	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		select {
		case semaphore <- struct{}{}: // Acquire
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		go func(idx int, ref catalog.PageRef) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			item, err := e.processPage(ref)
			results[idx] = pageResult{item: item, err: err}
		}(i, ref)
	}

	wg.Wait()
	return ctx.Err()
}

// processPage reads, decodes and normalizes a single page.
func (e *Engine) processPage(ref catalog.PageRef) (store.Item, error) {
	text, err := e.reader.ReadFile(ref.Page.Data)
	if err != nil {
		return store.Item{}, fmt.Errorf("%w %s: %w", ErrRead, ref.Page.Data, err)
	}

	record, err := material.Parse(text)
	if err != nil {
		return store.Item{}, err
	}

	data, err := record.Normalize()
	if err != nil {
		return store.Item{}, err
	}

	return store.Item{
		Shelf:      ref.ShelfName,
		Book:       ref.BookName,
		Page:       ref.Page.Name,
		Comments:   record.Comments,
		References: record.References,
		Data:       data,
	}, nil
}
