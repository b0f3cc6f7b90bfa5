// Package pricing computes a supplier-scoped sale price from a cost and a
// markup/discount configuration.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/laferre/catalogo/internal/model"
)

var hundred = decimal.NewFromInt(100)

// SalePrice applies the discount cascade (d1, then d2) followed by markup,
// rounded to two decimal places. Discounts of zero or less are skipped.
func SalePrice(cost decimal.Decimal, cfg model.SupplierConfig) decimal.Decimal {
	net := cost
	if cfg.Discount1Pct.IsPositive() {
		net = net.Mul(decimal.NewFromInt(1).Sub(cfg.Discount1Pct.Div(hundred)))
	}
	if cfg.Discount2Pct.IsPositive() {
		net = net.Mul(decimal.NewFromInt(1).Sub(cfg.Discount2Pct.Div(hundred)))
	}
	price := net.Mul(decimal.NewFromInt(1).Add(cfg.MarkupPct.Div(hundred)))
	return price.Round(2)
}
