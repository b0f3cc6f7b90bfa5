package pdfextract

import (
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/laferre/catalogo/internal/model"
)

func TestIsRepeatedHeader(t *testing.T) {
	row := []string{"Codigo", "Descripcion", "Precio"}
	if !isRepeatedHeader(row) {
		t.Errorf("expected header row to be detected as repeated header")
	}
	data := []string{"1001", "Martillo de bola", "1.234,56"}
	if isRepeatedHeader(data) {
		t.Errorf("did not expect data row to be flagged as header")
	}
}

func TestIsSectionTitle(t *testing.T) {
	row := []string{"", "Herramientas electricas", "", ""}
	if !isSectionTitle(row, 4) {
		t.Errorf("expected single short non-numeric cell to be a section title")
	}
	withDigits := []string{"", "Modelo 2024", "", ""}
	if isSectionTitle(withDigits, 4) {
		t.Errorf("did not expect a cell with digits to be a section title")
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !isEmptyRow([]string{"", "None", "nan"}) {
		t.Errorf("expected all-empty/None/nan row to be empty")
	}
	if isEmptyRow([]string{"", "Martillo", ""}) {
		t.Errorf("did not expect row with content to be empty")
	}
}

func TestMatchSalvageLineP1(t *testing.T) {
	row, ok := matchSalvageLine("AB1234  Martillo de bola profesional  1.234,56  extra")
	if !ok {
		t.Fatalf("expected P1 pattern to match")
	}
	if row[0] != "AB1234" {
		t.Errorf("expected code AB1234, got %q", row[0])
	}
}

func TestMatchSalvageLineRejectsZeroPrice(t *testing.T) {
	_, ok := matchSalvageLine("AB1234  Martillo de bola profesional  0  extra")
	if ok {
		t.Errorf("expected zero-valued price to be rejected")
	}
}

func TestMatchSalvageLineRejectsHeaderKeyword(t *testing.T) {
	_, ok := matchSalvageLine("Codigo  Descripcion del producto  1.234,56  extra")
	if ok {
		t.Errorf("expected header-keyword description to be rejected")
	}
}

func TestMergeGridsWidensAndConcatenates(t *testing.T) {
	a := model.RawGrid{Rows: [][]string{{"1", "2"}}}
	b := model.RawGrid{Rows: [][]string{{"3", "4", "5"}}}
	merged := mergeGrids([]model.RawGrid{a, b})
	if merged.NumCols() != 3 {
		t.Fatalf("expected 3 columns, got %d", merged.NumCols())
	}
	if len(merged.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(merged.Rows))
	}
	if merged.Cell(0, 2) != "" {
		t.Errorf("expected widened cell to be empty, got %q", merged.Cell(0, 2))
	}
}

func TestRuledExtractFindsRecurringBoundaries(t *testing.T) {
	rows := pdf.Rows{
		{Content: []pdf.Text{{X: 10, S: "1001"}, {X: 100, S: "Martillo"}, {X: 300, S: "1.234,56"}}},
		{Content: []pdf.Text{{X: 10, S: "1002"}, {X: 100, S: "Sierra"}, {X: 300, S: "864,05"}}},
		{Content: []pdf.Text{{X: 10, S: "1003"}, {X: 100, S: "Taladro"}, {X: 300, S: "100,50"}}},
	}
	table := ruledExtract(rows)
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	for _, row := range table {
		if len(row) != 3 {
			t.Errorf("expected 3 columns per row, got %d: %v", len(row), row)
		}
	}
}

func TestWhitespaceExtractSplitsOnGaps(t *testing.T) {
	rows := pdf.Rows{
		{Content: []pdf.Text{{X: 0, W: 5, S: "Martillo"}, {X: 50, W: 5, S: "1.234,56"}}},
	}
	table := whitespaceExtract(rows)
	if len(table) != 1 || len(table[0]) != 2 {
		t.Fatalf("expected 1 row with 2 cells, got %v", table)
	}
}
