// Package tabular reads delimited-text and workbook files into a raw,
// header-less grid without any type coercion — columns are addressed by
// index, never by name, leaving header interpretation to SchemaInferencer.
package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/laferre/catalogo/internal/model"
)

// ReadDelimited reads a CSV/TSV file as a raw grid. The delimiter is
// inferred from the extension: ".tsv" uses tab, everything else uses comma.
func ReadDelimited(path string) (model.RawGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.RawGrid{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, record)
	}
	return model.RawGrid{Rows: rows}, nil
}

// ReadWorkbook reads the first sheet of an xlsx/xlsm/xls file as a raw
// grid. No header row is assumed; every cell is taken verbatim.
func ReadWorkbook(path string) (model.RawGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.RawGrid{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.RawGrid{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return model.RawGrid{}, err
	}
	return model.RawGrid{Rows: rows}, nil
}

// Read dispatches on file extension to the delimited-text or workbook
// reader. Legacy ".xls" binary files are routed through the workbook
// reader; files that aren't OOXML-compatible surface as an error here and
// are treated as a ReadFailure by the caller.
func Read(path string) (model.RawGrid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ReadDelimited(path)
	case ".xlsx", ".xlsm", ".xls":
		return ReadWorkbook(path)
	default:
		return ReadDelimited(path)
	}
}
