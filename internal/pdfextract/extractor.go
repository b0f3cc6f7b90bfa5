// Package pdfextract turns a supplier PDF into a raw grid using a layered
// strategy — ruled-table detection, whitespace-based detection, and a
// line-regex salvage pass — merging whichever yielded the most rows per
// file, plus a specialized fast path for one recurring supplier layout.
package pdfextract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/numeric"
	"github.com/laferre/catalogo/internal/util"
)

var headerKeywords = []string{
	"codigo", "descripcion", "descripción", "producto", "precio",
	"$ lista", "$lista", "lista", "costo", "art", "articulo",
	"artículo", "detalle", "importe", "p.lista", "p. lista",
	"cod", "code", "item", "ref", "referencia",
}

var tallerNoiseTokens = []string{
	"luis", "estela", "gmail", "hidrolavadoras", "lijadoras",
	"página", "precio", "ofert", "cod.", "o. c", "oferta",
}

const (
	columnGapTolerance = 8.0  // points, whitespace-extraction word gap
	columnBucketWidth  = 5.0  // points, ruled-extraction X clustering bucket
	rulingMinRowShare  = 0.30 // fraction of rows a boundary must appear in
)

var priceToken = `\d{1,3}(?:\.?\d{3})*(?:,\d{1,2})?`

var (
	patternP1 = regexp.MustCompile(`^([A-Z]{1,5}\d{2,8}[A-Z]?)\s{2,}(.{10,80}?)\s{2,}(` + priceToken + `)\s*.*$`)
	patternP2 = regexp.MustCompile(`^(\d{3,10})\s{2,}(.{10,80}?)\s{2,}(` + priceToken + `)\s*.*$`)
	patternP3 = regexp.MustCompile(`^(.{10,80}?)\s{2,}(` + priceToken + `)\s*.*$`)
)

// Extract reads path into a RawGrid. It never returns an error for
// malformed pages — bad pages are logged and skipped so one broken page
// doesn't sink the whole file.
func Extract(path string) (model.RawGrid, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return model.RawGrid{}, err
	}
	defer f.Close()

	if strings.Contains(strings.ToUpper(path), "EL TALLER") {
		return extractTaller(r), nil
	}

	var tableGrids []model.RawGrid
	var salvageRows [][]string
	referenceCols := 0

	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			util.Logger.Warn("pdf: failed to extract row text", "path", path, "page", pageNum, "error", err)
		} else {
			table := ruledExtract(rows)
			if len(table) == 0 {
				table = whitespaceExtract(rows)
			}
			table, referenceCols = applyTableFilters(table, referenceCols)
			if len(table) > 0 {
				tableGrids = append(tableGrids, model.RawGrid{Rows: table})
			}
		}

		if text, err := page.GetPlainText(nil); err == nil {
			salvageRows = append(salvageRows, salvagePage(text)...)
		}
	}

	merged := mergeGrids(tableGrids)
	tableRowCount := len(merged.Rows)

	if len(salvageRows) > tableRowCount {
		return model.RawGrid{Rows: salvageRows}, nil
	}
	merged.Rows = append(merged.Rows, salvageRows...)
	return merged, nil
}

// ruledExtract derives column boundaries from word left-edges that recur
// across many rows on the page — approximating a ruled grid without a
// vector-graphics ruling detector.
func ruledExtract(rows pdf.Rows) [][]string {
	if len(rows) == 0 {
		return nil
	}

	bucketCounts := map[int]int{}
	for _, row := range rows {
		seen := map[int]bool{}
		for _, word := range row.Content {
			b := bucket(word.X)
			if !seen[b] {
				bucketCounts[b]++
				seen[b] = true
			}
		}
	}

	var boundaries []int
	threshold := float64(len(rows)) * rulingMinRowShare
	for b, count := range bucketCounts {
		if float64(count) >= threshold {
			boundaries = append(boundaries, b)
		}
	}
	if len(boundaries) < 2 {
		return nil
	}
	sort.Ints(boundaries)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(boundaries))
		for _, word := range row.Content {
			col := nearestBoundary(boundaries, bucket(word.X))
			if cells[col] != "" {
				cells[col] += " " + strings.TrimSpace(word.S)
			} else {
				cells[col] = strings.TrimSpace(word.S)
			}
		}
		out = append(out, cells)
	}
	return out
}

func bucket(x float64) int {
	return int(x / columnBucketWidth)
}

func nearestBoundary(boundaries []int, b int) int {
	best := 0
	bestDist := -1
	for i, v := range boundaries {
		d := v - b
		if d < 0 {
			d = -d
		}
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// whitespaceExtract splits each row independently at gaps between
// consecutive words wider than columnGapTolerance.
func whitespaceExtract(rows pdf.Rows) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		words := append([]pdf.Text{}, row.Content...)
		sort.Slice(words, func(i, j int) bool { return words[i].X < words[j].X })

		var cells []string
		var current strings.Builder
		var lastEndX float64
		first := true
		for _, word := range words {
			if !first && word.X-lastEndX > columnGapTolerance {
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(word.S)
			lastEndX = word.X + word.W
			first = false
		}
		if current.Len() > 0 {
			cells = append(cells, strings.TrimSpace(current.String()))
		}
		if len(cells) > 0 {
			out = append(out, cells)
		}
	}
	return out
}

// applyTableFilters drops empty/"None"/"nan" rows, repeated-header rows and
// section-title rows, and rejects the table outright if its column count is
// less than half the first accepted table's column count (cover-page
// artifact). Returns the filtered rows and the (possibly updated) reference
// column count.
func applyTableFilters(table [][]string, referenceCols int) ([][]string, int) {
	if len(table) == 0 {
		return nil, referenceCols
	}
	numCols := 0
	for _, row := range table {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	if numCols < 2 {
		return nil, referenceCols
	}
	if referenceCols > 0 && numCols < referenceCols/2 {
		return nil, referenceCols
	}

	var out [][]string
	for _, row := range table {
		if isEmptyRow(row) || isRepeatedHeader(row) || isSectionTitle(row, numCols) {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, referenceCols
	}
	if referenceCols == 0 {
		referenceCols = numCols
	}
	return out, referenceCols
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		t := strings.ToLower(strings.TrimSpace(cell))
		if t != "" && t != "none" && t != "nan" {
			return false
		}
	}
	return true
}

func isRepeatedHeader(row []string) bool {
	nonEmpty := 0
	hits := 0
	for _, cell := range row {
		t := strings.ToLower(strings.TrimSpace(cell))
		if t == "" {
			continue
		}
		nonEmpty++
		for _, kw := range headerKeywords {
			if strings.Contains(t, kw) {
				hits++
				break
			}
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(hits)/float64(nonEmpty) >= 0.5
}

func isSectionTitle(row []string, numCols int) bool {
	if numCols < 3 {
		return false
	}
	nonEmptyIdx := -1
	nonEmptyCount := 0
	for i, cell := range row {
		if strings.TrimSpace(cell) != "" {
			nonEmptyCount++
			nonEmptyIdx = i
		}
	}
	if nonEmptyCount != 1 {
		return false
	}
	text := strings.TrimSpace(row[nonEmptyIdx])
	if len(text) >= 50 {
		return false
	}
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

// salvagePage matches each line of a page's plain text against the
// code/description/price line patterns, rejecting zero-valued prices and
// header-keyword or too-short descriptions.
func salvagePage(text string) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if row, ok := matchSalvageLine(line); ok {
			out = append(out, row)
		}
	}
	return out
}

func matchSalvageLine(line string) ([]string, bool) {
	if m := patternP1.FindStringSubmatch(line); m != nil {
		return acceptSalvage(m[1], m[2], m[3])
	}
	if m := patternP2.FindStringSubmatch(line); m != nil {
		return acceptSalvage(m[1], m[2], m[3])
	}
	if m := patternP3.FindStringSubmatch(line); m != nil {
		return acceptSalvage("", m[1], m[2])
	}
	return nil, false
}

func acceptSalvage(code, desc, price string) ([]string, bool) {
	desc = strings.TrimSpace(desc)
	if len(desc) < 10 {
		return nil, false
	}
	lowerDesc := strings.ToLower(desc)
	for _, kw := range headerKeywords {
		if strings.Contains(lowerDesc, kw) {
			return nil, false
		}
	}
	cost, ok := numeric.Normalize(price)
	if !ok || cost.IsZero() {
		return nil, false
	}
	return []string{code, desc, price}, true
}

// extractTaller is the fast path for files whose path contains "EL TALLER":
// each ruled row with >=2 cells yields product=cell0, price=cell1 (or cell2
// when cell1 has no digits and no currency marker).
func extractTaller(r *pdf.Reader) model.RawGrid {
	var rows [][]string
	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageRows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		table := ruledExtract(pageRows)
		for _, row := range table {
			if len(row) < 2 {
				continue
			}
			product := strings.TrimSpace(row[0])
			if isNoiseProduct(product) {
				continue
			}
			price := row[1]
			if len(row) >= 3 && !looksLikePrice(price) {
				price = row[2]
			}
			rows = append(rows, []string{product, price})
		}
	}
	return model.RawGrid{Rows: rows}
}

func looksLikePrice(s string) bool {
	if strings.Contains(s, "$") {
		return true
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func isNoiseProduct(product string) bool {
	lower := strings.ToLower(product)
	for _, token := range tallerNoiseTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// mergeGrids widens each grid to the maximum column count across all of
// them and concatenates in order.
func mergeGrids(grids []model.RawGrid) model.RawGrid {
	if len(grids) == 0 {
		return model.RawGrid{}
	}
	maxCols := 0
	for _, g := range grids {
		if n := g.NumCols(); n > maxCols {
			maxCols = n
		}
	}
	result := grids[0].Widen(maxCols)
	for _, g := range grids[1:] {
		result = result.Append(g.Widen(maxCols))
	}
	return result
}
