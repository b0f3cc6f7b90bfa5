// Package ingestor drives the per-file state machine: read → infer →
// normalize → cache, turning one source file into a supplier-named
// SupplierTable.
package ingestor

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/pdfextract"
	"github.com/laferre/catalogo/internal/schema"
	"github.com/laferre/catalogo/internal/tabular"
	"github.com/laferre/catalogo/internal/util"
)

// eligiblePattern is the doublestar glob every supplier file's basename must
// match; the directory itself is never walked recursively, but the pattern
// match keeps extension eligibility in one declarative place rather than a
// hand-rolled switch.
const eligiblePattern = "*.{xlsx,xls,csv,pdf}"

// Eligible reports whether path has one of the ingestible extensions.
func Eligible(path string) bool {
	matched, err := doublestar.Match(eligiblePattern, strings.ToLower(filepath.Base(path)))
	return err == nil && matched
}

// Result is the outcome of ingesting one file.
type Result struct {
	Supplier string
	Table    model.SupplierTable
}

// Ingest runs the per-file pipeline for path, whose normalized cache lives
// under cacheDir. A nil Result with a nil error means the file was
// best-effort skipped (NotAPriceTable, ReadFailure); callers must not treat
// that as fatal.
func Ingest(ctx context.Context, path, cacheDir string) (*Result, error) {
	supplier := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cachePath := filepath.Join(cacheDir, supplier+".gob")

	log := util.FromContext(util.WithFields(ctx, map[string]interface{}{
		"path":     path,
		"supplier": supplier,
	}))

	if table, ok := loadCache(cachePath, path); ok {
		return &Result{Supplier: supplier, Table: table}, nil
	}

	mapping := readManualMapping(path)

	var grid model.RawGrid
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		grid, err = pdfextract.Extract(path)
	} else {
		grid, err = tabular.Read(path)
	}
	if err != nil {
		log.Warn("ingestor: read failure", "error", err)
		return nil, nil
	}

	table := schema.Infer(grid, mapping)
	if len(table) == 0 {
		log.Info("ingestor: not a price table")
		return nil, nil
	}

	if err := writeCache(cachePath, table); err != nil {
		log.Warn("ingestor: cache write failed", "error", err)
	}

	return &Result{Supplier: supplier, Table: table}, nil
}

// readManualMapping looks for a "<source>.json" sidecar and parses it as a
// ManualMapping. Absence or a parse error both mean "no override".
func readManualMapping(sourcePath string) *model.ManualMapping {
	sidecar := sourcePath + ".json"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return nil
	}
	var mapping model.ManualMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		util.Logger.Warn("ingestor: malformed manual mapping sidecar", "path", sidecar, "error", err)
		return nil
	}
	return &mapping
}

// loadCache returns the cached table for path if the cache file exists and
// is strictly newer than the source file.
func loadCache(cachePath, sourcePath string) (model.SupplierTable, bool) {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, false
	}
	if !cacheInfo.ModTime().After(sourceInfo.ModTime()) {
		return nil, false
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var table model.SupplierTable
	if err := gob.NewDecoder(f).Decode(&table); err != nil {
		return nil, false
	}
	return table, true
}

func writeCache(cachePath string, table model.SupplierTable) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return err
	}
	tmp := cachePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(table); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, cachePath)
}
