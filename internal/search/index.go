// Package search implements the two-phase exact/fuzzy query over a
// Catalog: an exact-substring pass, followed by a conditional fuzzy pass
// when the substring pass came up thin.
package search

import (
	"sort"
	"strings"

	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/pricing"
)

const (
	minFuzzyHits     = 5
	minFuzzyQueryLen = 3
	fuzzyCandidates  = 5
)

// Query runs the two-phase search against catalog, optionally restricted
// to one supplier, returning at most limit hits ranked by score descending.
func Query(catalog model.Catalog, cfg *model.GlobalConfig, query string, limit int, supplier string) []model.SearchHit {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}
	lowerQuery := strings.ToLower(query)

	suppliers := selectSuppliers(catalog, supplier)

	hits := substringPhase(catalog, suppliers, lowerQuery, limit, cfg)
	if len(hits) < minFuzzyHits && len([]rune(query)) > minFuzzyQueryLen {
		hits = append(hits, fuzzyPhase(catalog, suppliers, query, hits, cfg)...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func selectSuppliers(catalog model.Catalog, supplier string) []string {
	if supplier != "" {
		if _, ok := catalog[supplier]; ok {
			return []string{supplier}
		}
		return nil
	}
	return catalog.Suppliers()
}

func substringPhase(catalog model.Catalog, suppliers []string, lowerQuery string, limit int, cfg *model.GlobalConfig) []model.SearchHit {
	var hits []model.SearchHit
	for _, supplierName := range suppliers {
		count := 0
		for _, row := range catalog[supplierName] {
			if count >= limit {
				break
			}
			if strings.Contains(strings.ToLower(row.Product), lowerQuery) ||
				strings.Contains(strings.ToLower(row.Code), lowerQuery) {
				hits = append(hits, toHit(row, supplierName, 100, cfg))
				count++
			}
		}
	}
	return hits
}

func fuzzyPhase(catalog model.Catalog, suppliers []string, query string, existing []model.SearchHit, cfg *model.GlobalConfig) []model.SearchHit {
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.Supplier+"\x00"+h.Product] = true
	}

	threshold := cfg.FuzzyThreshold
	var hits []model.SearchHit
	for _, supplierName := range suppliers {
		table := catalog[supplierName]
		type scored struct {
			row   model.NormalizedRow
			score int
		}
		var candidates []scored
		for _, row := range table {
			score := partialTokenSortRatio(query, row.Product)
			candidates = append(candidates, scored{row, score})
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		taken := 0
		for _, c := range candidates {
			if taken >= fuzzyCandidates {
				break
			}
			taken++
			if c.score < threshold || c.score >= 100 {
				continue
			}
			key := supplierName + "\x00" + c.row.Product
			if seen[key] {
				continue
			}
			hits = append(hits, toHit(c.row, supplierName, c.score, cfg))
		}
	}
	return hits
}

func toHit(row model.NormalizedRow, supplier string, score int, cfg *model.GlobalConfig) model.SearchHit {
	snapshot := cfg.ConfigFor(supplier)
	return model.SearchHit{
		Code:           row.Code,
		Product:        row.Product,
		Supplier:       supplier,
		Cost:           row.Cost,
		ConfigSnapshot: snapshot,
		SalePrice:      pricing.SalePrice(row.Cost, snapshot),
		Score:          score,
	}
}
