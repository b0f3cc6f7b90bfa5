package search

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/laferre/catalogo/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQueryEmptyReturnsEmpty(t *testing.T) {
	catalog := model.Catalog{}
	cfg := &model.GlobalConfig{MarginDefault: dec("20"), FuzzyThreshold: 60}
	if got := Query(catalog, cfg, "", 10, ""); got != nil {
		t.Errorf("expected nil for empty query, got %v", got)
	}
}

func TestQueryShortQueryNeverTriggersFuzzy(t *testing.T) {
	catalog := model.Catalog{
		"A": {{Product: "Tornillo hexagonal", Cost: dec("10")}},
	}
	cfg := &model.GlobalConfig{MarginDefault: dec("20"), FuzzyThreshold: 60}
	hits := Query(catalog, cfg, "xyz", 10, "")
	if len(hits) != 0 {
		t.Errorf("expected no hits for unmatched short query, got %v", hits)
	}
}

func TestQueryRankingExactBeforeFuzzy(t *testing.T) {
	catalog := model.Catalog{
		"A": {{Product: "Martillo de bola", Cost: dec("1000")}},
		"B": {{Product: "Martilo de carpintero", Cost: dec("500")}},
	}
	cfg := &model.GlobalConfig{
		MarginDefault:  dec("20"),
		FuzzyThreshold: 60,
		PerSupplierMargins: map[string]model.SupplierConfig{
			"A": {MarkupPct: dec("50")},
		},
	}

	hits := Query(catalog, cfg, "martillo", 10, "")
	if len(hits) < 1 {
		t.Fatalf("expected at least one hit")
	}
	if hits[0].Supplier != "A" || hits[0].Score != 100 {
		t.Fatalf("expected exact match from supplier A ranked first, got %+v", hits[0])
	}
	if hits[0].SalePrice.StringFixed(2) != "1500.00" {
		t.Errorf("expected sale price 1500.00, got %s", hits[0].SalePrice.StringFixed(2))
	}
}

func TestQueryLimitTruncates(t *testing.T) {
	catalog := model.Catalog{
		"A": {
			{Product: "Tornillo uno", Cost: dec("10")},
			{Product: "Tornillo dos", Cost: dec("10")},
			{Product: "Tornillo tres", Cost: dec("10")},
		},
	}
	cfg := &model.GlobalConfig{MarginDefault: dec("20"), FuzzyThreshold: 60}
	hits := Query(catalog, cfg, "tornillo", 2, "")
	if len(hits) != 2 {
		t.Fatalf("expected limit=2 to cap hits, got %d", len(hits))
	}
}

func TestQueryFiltersBySupplier(t *testing.T) {
	catalog := model.Catalog{
		"A": {{Product: "Tornillo uno", Cost: dec("10")}},
		"B": {{Product: "Tornillo dos", Cost: dec("10")}},
	}
	cfg := &model.GlobalConfig{MarginDefault: dec("20"), FuzzyThreshold: 60}
	hits := Query(catalog, cfg, "tornillo", 10, "A")
	if len(hits) != 1 || hits[0].Supplier != "A" {
		t.Fatalf("expected only supplier A hits, got %+v", hits)
	}
}
