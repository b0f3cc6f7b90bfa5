// Package schema decides which columns of a raw grid hold a product's code,
// description and price, either from an explicit mapping or by scoring
// column content density, then turns the selection into a SupplierTable.
package schema

import (
	"strings"
	"unicode"

	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/numeric"
)

const sampleSize = 200

// Infer chooses Product/Price/Code columns from grid and produces a
// cleaned SupplierTable. mapping may be nil.
func Infer(grid model.RawGrid, mapping *model.ManualMapping) model.SupplierTable {
	if len(grid.Rows) == 0 {
		return nil
	}

	if prod, price, codigo, ok := shortCircuitColumns(grid); ok {
		return finalCleanup(grid, 1, prod, price, codigo)
	}

	if mapping != nil {
		if table, ok := fromManualMapping(grid, *mapping); ok {
			return table
		}
	}

	return fromAutomaticInference(grid)
}

// shortCircuitColumns recognizes a grid whose first row is literally
// "Producto"/"Precio de Costo"/"Codigo", as already-labeled extractor
// output. Codigo is optional; its absence just means no code column.
func shortCircuitColumns(grid model.RawGrid) (prod, price, codigo int, ok bool) {
	if len(grid.Rows) == 0 {
		return 0, 0, -1, false
	}
	header := grid.Rows[0]
	prod, price, codigo = -1, -1, -1
	for i, cell := range header {
		switch strings.TrimSpace(cell) {
		case "Producto":
			prod = i
		case "Precio de Costo":
			price = i
		case "Codigo":
			codigo = i
		}
	}
	if prod == -1 || price == -1 {
		return 0, 0, -1, false
	}
	return prod, price, codigo, true
}

func fromManualMapping(grid model.RawGrid, mapping model.ManualMapping) (model.SupplierTable, bool) {
	if mapping.SkipRows > 0 {
		if mapping.SkipRows >= len(grid.Rows) {
			return nil, false
		}
		grid = model.RawGrid{Rows: grid.Rows[mapping.SkipRows:]}
	}

	maxIdx := grid.NumCols() - 1
	if mapping.ColProducto < 0 || mapping.ColProducto > maxIdx {
		return nil, false
	}
	if mapping.ColPrecio < 0 || mapping.ColPrecio > maxIdx {
		return nil, false
	}
	codigo := -1
	if mapping.ColCodigo != nil && *mapping.ColCodigo >= 0 && *mapping.ColCodigo <= maxIdx {
		codigo = *mapping.ColCodigo
	}

	return finalCleanup(grid, 0, mapping.ColProducto, mapping.ColPrecio, codigo), true
}

type columnScores struct {
	numeric float64
	decimal float64
	product float64
	code    float64
}

func fromAutomaticInference(grid model.RawGrid) model.SupplierTable {
	numCols := grid.NumCols()
	if numCols == 0 {
		return nil
	}

	sampleIdx := sampleIndices(len(grid.Rows))
	scores := make([]columnScores, numCols)

	for col := 0; col < numCols; col++ {
		total := len(sampleIdx)
		if total == 0 {
			continue
		}
		colValues := grid.Column(col)
		var hitsNum, hitsDec, hitsProd, hitsCod int
		var sumLen int
		seen := make(map[string]struct{}, total)
		for _, row := range sampleIdx {
			cell := strings.TrimSpace(colValues[row])
			seen[cell] = struct{}{}
			sumLen += len(cell)
			isNum := isNumberLike(cell)
			if isNum {
				hitsNum++
				if hasSeparator(cell) {
					hitsDec++
				}
			}
			if isProductLike(cell) {
				hitsProd++
			}
			if isCodeLike(cell) {
				hitsCod++
			}
		}
		avgLen := float64(sumLen) / float64(total)
		uniqueRatio := float64(len(seen)) / float64(total)
		scores[col] = columnScores{
			numeric: float64(hitsNum) / float64(total),
			decimal: float64(hitsDec) / float64(total),
			product: (float64(hitsProd) / float64(total)) * avgLen,
			code:    (float64(hitsCod) / float64(total)) * uniqueRatio,
		}
	}

	var colProducto, colPrecio, colCodigo int
	colPrecio, colProducto, colCodigo = -1, -1, -1

	if numCols == 2 {
		s0, s1 := scores[0], scores[1]
		switch {
		case s1.numeric > 0.30 && s0.product > 0.30:
			colProducto, colPrecio = 0, 1
		case s0.numeric > 0.30 && s1.product > 0.30:
			colProducto, colPrecio = 1, 0
		default:
			return nil
		}
	} else {
		best := -1
		for col := 0; col < numCols; col++ {
			if scores[col].numeric <= 0.10 {
				continue
			}
			if best == -1 || scores[col].numeric > scores[best].numeric {
				best = col
			}
		}
		if best == -1 {
			return nil
		}

		candidates := make([]int, 0, numCols)
		for col := 0; col < numCols; col++ {
			if scores[col].numeric > 0.10 {
				candidates = append(candidates, col)
			}
		}
		sortByNumericDesc(candidates, scores)

		matchCol := candidates[0]
		bestScore := scores[matchCol].numeric
		for _, cand := range candidates[1:] {
			if bestScore-scores[cand].numeric < 0.20 {
				if scores[cand].decimal > scores[matchCol].decimal+0.10 {
					matchCol = cand
					bestScore = scores[cand].numeric
				}
			} else {
				break
			}
		}
		colPrecio = matchCol

		bestProduct := -1
		for col := 0; col < numCols; col++ {
			if col == colPrecio {
				continue
			}
			if scores[col].product <= 0.50 {
				continue
			}
			if bestProduct == -1 || scores[col].product > scores[bestProduct].product {
				bestProduct = col
			}
		}
		if bestProduct == -1 {
			return nil
		}
		colProducto = bestProduct

		bestCode := -1
		bestCodeScore := -1.0
		for col := 0; col < numCols; col++ {
			if col == colPrecio || col == colProducto {
				continue
			}
			if scores[col].code <= 0.05 {
				continue
			}
			weighted := scores[col].code
			if col < colProducto {
				weighted *= 2.0
			} else {
				weighted *= 0.5
			}
			if weighted > bestCodeScore {
				bestCodeScore = weighted
				bestCode = col
			}
		}
		colCodigo = bestCode
	}

	if colProducto == -1 || colPrecio == -1 {
		return nil
	}

	return finalCleanup(grid, 0, colProducto, colPrecio, colCodigo)
}

// sortByNumericDesc stable-sorts candidate column indices by numeric score
// descending; ties keep the leftmost column first (deterministic tie-break).
func sortByNumericDesc(candidates []int, scores []columnScores) {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && scores[candidates[j]].numeric > scores[candidates[j-1]].numeric; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

func sampleIndices(totalRows int) []int {
	if totalRows == 0 {
		return nil
	}
	step := totalRows / sampleSize
	if step < 1 {
		step = 1
	}
	idx := make([]int, 0, sampleSize+1)
	for i := 0; i < totalRows; i += step {
		idx = append(idx, i)
	}
	return idx
}

func isNumberLike(s string) bool {
	t := strings.ToLower(s)
	t = strings.ReplaceAll(t, "$", "")
	t = strings.ReplaceAll(t, "usd", "")
	t = strings.ReplaceAll(t, "eur", "")
	t = strings.TrimSpace(t)
	if t == "" || t == "nan" {
		return false
	}
	digits := 0
	for _, r := range t {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits)/float64(len([]rune(t))) > 0.5
}

func hasSeparator(s string) bool {
	return strings.Contains(s, ",") || strings.Contains(s, ".")
}

func isProductLike(s string) bool {
	t := strings.TrimSpace(s)
	if len(t) < 4 || strings.EqualFold(t, "nan") {
		return false
	}
	letters := 0
	runes := []rune(t)
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			letters++
		}
	}
	return float64(letters)/float64(len(runes)) > 0.6
}

func isCodeLike(s string) bool {
	t := strings.TrimSpace(s)
	if strings.EqualFold(t, "nan") {
		return false
	}
	n := len([]rune(t))
	if !(n > 1 && n < 18) {
		return false
	}
	for _, r := range t {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// finalCleanup applies NumericNormalizer to the price column, trims the
// product column, coerces the code column to a string (or ""), and drops
// any row failing validation.
func finalCleanup(grid model.RawGrid, startRow, colProducto, colPrecio, colCodigo int) model.SupplierTable {
	out := make(model.SupplierTable, 0, len(grid.Rows))
	for r := startRow; r < len(grid.Rows); r++ {
		priceCell := grid.Cell(r, colPrecio)
		cost, ok := numeric.Normalize(priceCell)
		if !ok {
			continue
		}

		product := strings.TrimSpace(grid.Cell(r, colProducto))
		if len([]rune(product)) <= 1 {
			continue
		}

		code := ""
		if colCodigo >= 0 {
			code = strings.TrimSpace(grid.Cell(r, colCodigo))
			if strings.EqualFold(code, "nan") {
				code = ""
			}
		}

		out = append(out, model.NormalizedRow{Code: code, Product: product, Cost: cost})
	}
	return out
}
