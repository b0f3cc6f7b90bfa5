// Package model holds the shared data types that flow through the
// ingestion pipeline and out to search/pricing: RawGrid, ManualMapping,
// NormalizedRow, SupplierTable, SupplierConfig, GlobalConfig and SearchHit.
//
// Columns are addressed by index in RawGrid, before schema inference has
// run, and by name in NormalizedRow once a table's columns are known.
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted documents use bare JSON numbers for decimal fields
	// (margen_default, umbral_busqueda_fuzzy's siblings), matching the
	// CUE schema's `number` type rather than a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// RawGrid is a rectangular matrix of strings, header-less, immutable once
// built. Readers produce it; SchemaInferencer consumes it.
type RawGrid struct {
	Rows [][]string
}

// NumCols returns the widest row width in the grid.
func (g RawGrid) NumCols() int {
	max := 0
	for _, row := range g.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the value at (row, col), or "" if out of range.
func (g RawGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Column returns every value in a column across all rows, padding with ""
// for short rows.
func (g RawGrid) Column(col int) []string {
	out := make([]string, len(g.Rows))
	for i := range g.Rows {
		out[i] = g.Cell(i, col)
	}
	return out
}

// Widen right-pads every row to width n with empty strings, returning a new
// grid. Used before concatenating candidate grids of different shapes.
func (g RawGrid) Widen(n int) RawGrid {
	out := make([][]string, len(g.Rows))
	for i, row := range g.Rows {
		if len(row) >= n {
			cp := make([]string, len(row))
			copy(cp, row)
			out[i] = cp
			continue
		}
		padded := make([]string, n)
		copy(padded, row)
		out[i] = padded
	}
	return RawGrid{Rows: out}
}

// Append concatenates rows of other onto g, returning a new grid.
func (g RawGrid) Append(other RawGrid) RawGrid {
	out := make([][]string, 0, len(g.Rows)+len(other.Rows))
	out = append(out, g.Rows...)
	out = append(out, other.Rows...)
	return RawGrid{Rows: out}
}

// ManualMapping is a per-file override fixing column indices when automatic
// inference is known to be wrong. ColCodigo is optional; nil means absent.
type ManualMapping struct {
	ColProducto int  `json:"col_producto"`
	ColPrecio   int  `json:"col_precio"`
	ColCodigo   *int `json:"col_codigo,omitempty"`
	SkipRows    int  `json:"skip_rows,omitempty"`
}

// NormalizedRow is one cleaned, typed catalog entry.
type NormalizedRow struct {
	Code    string
	Product string
	Cost    decimal.Decimal
}

// SupplierTable is an ordered sequence of NormalizedRow belonging to one
// supplier; row order equals the source file's scan order.
type SupplierTable []NormalizedRow

// SupplierConfig holds a supplier's markup and two-step discount cascade.
// It marshals as a bare number when both discounts are zero (matching the
// scalar shorthand the original margin file uses) and as a record
// otherwise.
type SupplierConfig struct {
	MarkupPct     decimal.Decimal `json:"margen"`
	Discount1Pct  decimal.Decimal `json:"desc1"`
	Discount2Pct  decimal.Decimal `json:"desc2"`
}

// MarshalJSON emits a bare number when there are no discounts, a record
// otherwise.
func (c SupplierConfig) MarshalJSON() ([]byte, error) {
	if c.Discount1Pct.IsZero() && c.Discount2Pct.IsZero() {
		return []byte(c.MarkupPct.String()), nil
	}
	type record struct {
		Markup    decimal.Decimal `json:"margen"`
		Discount1 decimal.Decimal `json:"desc1"`
		Discount2 decimal.Decimal `json:"desc2"`
	}
	return json.Marshal(record{c.MarkupPct, c.Discount1Pct, c.Discount2Pct})
}

// UnmarshalJSON accepts either a bare number (markup only) or a record.
func (c *SupplierConfig) UnmarshalJSON(data []byte) error {
	var scalar decimal.Decimal
	if err := json.Unmarshal(data, &scalar); err == nil {
		c.MarkupPct = scalar
		c.Discount1Pct = decimal.Zero
		c.Discount2Pct = decimal.Zero
		return nil
	}
	var record struct {
		Markup    decimal.Decimal `json:"margen"`
		Discount1 decimal.Decimal `json:"desc1"`
		Discount2 decimal.Decimal `json:"desc2"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("supplier config must be a number or {margen,desc1,desc2} record: %w", err)
	}
	c.MarkupPct = record.Markup
	c.Discount1Pct = record.Discount1
	c.Discount2Pct = record.Discount2
	return nil
}

// GlobalConfig is the persisted document ConfigStore owns.
type GlobalConfig struct {
	PerSupplierMargins map[string]SupplierConfig `json:"margenes_por_proveedor"`
	MarginDefault      decimal.Decimal           `json:"margen_default"`
	FuzzyThreshold     int                       `json:"umbral_busqueda_fuzzy"`
	CurrencyCode       string                    `json:"moneda"`
	DriveFolderID      string                    `json:"drive_folder_id,omitempty"`
}

// ConfigFor returns the normalized SupplierConfig for a supplier, falling
// back to the global default markup with zero discounts when the supplier
// has no entry.
func (g *GlobalConfig) ConfigFor(supplier string) SupplierConfig {
	if g.PerSupplierMargins != nil {
		if cfg, ok := g.PerSupplierMargins[supplier]; ok {
			return cfg
		}
	}
	return SupplierConfig{MarkupPct: g.MarginDefault}
}

// Catalog maps supplier name to its normalized table. The Catalog is
// exclusively owned by whoever holds it; SearchHits never alias its rows.
type Catalog map[string]SupplierTable

// TotalProducts sums row counts across all suppliers.
func (c Catalog) TotalProducts() int {
	n := 0
	for _, t := range c {
		n += len(t)
	}
	return n
}

// Suppliers returns the supplier names present in the catalog, sorted so
// that scan order (and with it, search tie-break order) is stable across
// calls rather than riding Go's randomized map iteration.
func (c Catalog) Suppliers() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchHit is a transient search result value; it never aliases a
// SupplierTable row.
type SearchHit struct {
	Code           string
	Product        string
	Supplier       string
	Cost           decimal.Decimal
	ConfigSnapshot SupplierConfig
	SalePrice      decimal.Decimal
	Score          int
}
