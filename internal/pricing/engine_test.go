package pricing

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

func TestSalePriceMarkupOnly(t *testing.T) {
	cfg := model.SupplierConfig{MarkupPct: dec("30")}
	cases := []struct {
		cost string
		want string
	}{
		{"17684.21", "22989.47"},
		{"864.05", "1123.27"},
	}
	for _, tc := range cases {
		got := SalePrice(dec(tc.cost), cfg)
		if got.StringFixed(2) != tc.want {
			t.Errorf("SalePrice(%s) = %s, want %s", tc.cost, got.StringFixed(2), tc.want)
		}
	}
}

func TestSalePriceWithDiscountCascade(t *testing.T) {
	cfg := model.SupplierConfig{MarkupPct: dec("50"), Discount1Pct: dec("10"), Discount2Pct: dec("5")}
	got := SalePrice(dec("1000"), cfg)
	// 1000 * 0.90 * 0.95 * 1.50 = 1282.50
	if got.StringFixed(2) != "1282.50" {
		t.Errorf("expected 1282.50, got %s", got.StringFixed(2))
	}
}

func TestSalePriceSkipsNonPositiveDiscounts(t *testing.T) {
	cfg := model.SupplierConfig{MarkupPct: dec("0"), Discount1Pct: dec("0"), Discount2Pct: dec("-5")}
	got := SalePrice(dec("1000"), cfg)
	if got.StringFixed(2) != "1000.00" {
		t.Errorf("expected cost unchanged at 1000.00, got %s", got.StringFixed(2))
	}
}

func TestSalePriceExactMartilloExample(t *testing.T) {
	cfg := model.SupplierConfig{MarkupPct: dec("50")}
	got := SalePrice(dec("1000"), cfg)
	if got.StringFixed(2) != "1500.00" {
		t.Errorf("expected 1500.00, got %s", got.StringFixed(2))
	}
}
