// Package catalog aggregates per-supplier normalized tables, crawling an
// input directory in parallel and publishing the result as an atomically
// swapped snapshot so concurrent search/pricing reads never observe a
// partially rebuilt catalog.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/laferre/catalogo/internal/ingestor"
	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/util"
)

// Store holds the current Catalog snapshot plus the last reload's summary
// and serves reads without blocking on an in-flight Reload.
type Store struct {
	current atomic.Pointer[model.Catalog]
}

// NewStore returns a Store with an empty initial catalog.
func NewStore() *Store {
	s := &Store{}
	empty := model.Catalog{}
	s.current.Store(&empty)
	return s
}

// Snapshot returns the currently published Catalog.
func (s *Store) Snapshot() model.Catalog {
	return *s.current.Load()
}

// Summary reports reload()'s per-run counters: how many files were seen,
// how many suppliers loaded, and how many were rejected or skipped.
type Summary struct {
	FilesSeen       int
	SuppliersLoaded int
	RowsTotal       int
	RejectedFiles   int
}

// Reload crawls dir for eligible files, ingests them in parallel (bounded by
// runtime.NumCPU()), and atomically publishes the merged Catalog. Ingestion
// is a fork-join barrier: the previous snapshot stays visible to readers
// until every worker has finished. Each worker logs through a copy of ctx's
// logger tagged with its own path, so concurrent ingestion failures stay
// attributable in the JSON log stream.
func Reload(ctx context.Context, dir string, store *Store) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, err
	}

	cacheDir := filepath.Join(dir, "cache")

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if ingestor.Eligible(path) {
			paths = append(paths, path)
		}
	}

	var (
		mu      sync.Mutex
		catalog = model.Catalog{}
		summary Summary
	)
	summary.FilesSeen = len(paths)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, path := range paths {
		path := path
		workerCtx := util.WithField(ctx, "path", path)
		g.Go(func() error {
			res, err := ingestor.Ingest(workerCtx, path, cacheDir)
			if err != nil {
				util.FromContext(workerCtx).Warn("catalog: ingestion error", "error", err)
				mu.Lock()
				summary.RejectedFiles++
				mu.Unlock()
				return nil
			}
			if res == nil {
				mu.Lock()
				summary.RejectedFiles++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			catalog[res.Supplier] = res.Table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary.SuppliersLoaded = len(catalog)
	summary.RowsTotal = catalog.TotalProducts()

	store.current.Store(&catalog)
	return summary, nil
}
