package schema

import (
	"testing"

	"github.com/laferre/catalogo/internal/model"
)

func TestInferShortCircuit(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"Producto", "Precio de Costo"},
		{"Taladro", "100,50"},
		{"Maza", "not-a-price"},
	}}
	table := Infer(grid, nil)
	if len(table) != 1 {
		t.Fatalf("expected 1 row after dropping malformed price, got %d", len(table))
	}
	if table[0].Product != "Taladro" {
		t.Errorf("expected product Taladro, got %q", table[0].Product)
	}
}

func TestInferShortCircuitWithCodigoColumn(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"Codigo", "Producto", "Precio de Costo"},
		{"A100", "Taladro", "100,50"},
		{"A200", "Maza", "200,00"},
	}}
	table := Infer(grid, nil)
	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}
	if table[0].Code != "A100" || table[1].Code != "A200" {
		t.Errorf("expected existing Codigo column to be used, got %+v", table)
	}
}

func TestInferManualMapping(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"header", "ignored", "ignored"},
		{"1001", "Martillo de bola", "1.234,56"},
		{"1002", "Sierra manual", "864,05"},
	}}
	codIdx := 0
	mapping := &model.ManualMapping{ColProducto: 1, ColPrecio: 2, ColCodigo: &codIdx, SkipRows: 1}
	table := Infer(grid, mapping)
	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}
	if table[0].Code != "1001" || table[0].Product != "Martillo de bola" {
		t.Errorf("unexpected row: %+v", table[0])
	}
}

func TestInferManualMappingOutOfRangeFallsBackToAutomatic(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"1001", "Martillo de bola profesional", "1.234,56"},
		{"1002", "Sierra manual japonesa", "864,05"},
		{"1003", "Destornillador phillips", "100,50"},
	}}
	mapping := &model.ManualMapping{ColProducto: 99, ColPrecio: 99}
	table := Infer(grid, mapping)
	if len(table) != 3 {
		t.Fatalf("expected automatic fallback to find 3 rows, got %d", len(table))
	}
}

func TestInferAutomaticWithCode(t *testing.T) {
	grid := model.RawGrid{Rows: make([][]string, 0, 20)}
	prices := []string{"1.234,56", "864,05", "100,50", "55,20", "908,11"}
	products := []string{
		"Martillo de bola profesional acero",
		"Sierra manual japonesa de precision",
		"Destornillador phillips punta magnetica",
		"Taladro percutor inalambrico 18v",
		"Llave inglesa ajustable cromada",
	}
	for i := 0; i < len(prices); i++ {
		grid.Rows = append(grid.Rows, []string{
			"10" + string(rune('0'+i)),
			products[i],
			"",
			prices[i],
		})
	}

	table := Infer(grid, nil)
	if len(table) != len(prices) {
		t.Fatalf("expected %d rows, got %d", len(prices), len(table))
	}
	for _, row := range table {
		if row.Code == "" {
			t.Errorf("expected a non-empty code column to be detected, row=%+v", row)
		}
	}
}

func TestInferTwoColumnSpecialCase(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"Martillo de bola profesional", "1.234,56"},
		{"Sierra manual japonesa", "864,05"},
		{"Destornillador phillips punta", "100,50"},
	}}
	table := Infer(grid, nil)
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
}

func TestInferRejectsNonPriceTable(t *testing.T) {
	grid := model.RawGrid{Rows: [][]string{
		{"one", "two"},
		{"three", "four"},
	}}
	table := Infer(grid, nil)
	if table != nil {
		t.Errorf("expected nil table for non-price grid, got %+v", table)
	}
}
