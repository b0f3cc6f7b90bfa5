// Package catalogo is the published core API: the facade that wires a
// config Store, a Catalog and the search index together behind reload,
// search, list-suppliers, total-products and update-margin.
package catalogo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/laferre/catalogo/internal/catalog"
	"github.com/laferre/catalogo/internal/config"
	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/search"
)

// Engine is the top-level handle a CLI or embedding program holds. One
// Engine owns one input directory and one config document.
type Engine struct {
	dir    string
	store  *catalog.Store
	config *config.Store
}

// New opens config at configPath (falling back to built-in defaults if it
// is missing or malformed) and returns an Engine with an empty Catalog;
// call Reload to populate it.
func New(dir, configPath string) *Engine {
	return &Engine{
		dir:    dir,
		store:  catalog.NewStore(),
		config: config.Open(configPath),
	}
}

// Reload repopulates the Catalog from disk, atomically swapping the
// published snapshot. See catalog.Reload for the parallel fork-join model.
func (e *Engine) Reload(ctx context.Context) (catalog.Summary, error) {
	return catalog.Reload(ctx, e.dir, e.store)
}

// Search runs the two-phase exact/fuzzy query, optionally restricted to
// one supplier.
func (e *Engine) Search(query string, limit int, supplier string) []model.SearchHit {
	cfg := e.config.Get()
	return search.Query(e.store.Snapshot(), &cfg, query, limit, supplier)
}

// ListSuppliers returns the supplier names currently in the Catalog.
func (e *Engine) ListSuppliers() []string {
	return e.store.Snapshot().Suppliers()
}

// TotalProducts sums row counts across all suppliers in the Catalog.
func (e *Engine) TotalProducts() int {
	return e.store.Snapshot().TotalProducts()
}

// UpdateMargin sets and persists a supplier's markup/discount cascade.
func (e *Engine) UpdateMargin(supplier string, markup, d1, d2 decimal.Decimal) error {
	return e.config.UpdateMargin(supplier, markup, d1, d2)
}
