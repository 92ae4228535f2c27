// Package parser reads positional cell data from Excel sheets.
package parser

import (
	"strconv"
	"strings"

	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/xuri/excelize/v2"
)

// ReadRows reads up to limit rows of a sheet without loading the rest of
// it. Reading starts at the first row holding a value, and columns left of
// the first used column are dropped, so C[0] is the leftmost used column.
// Rows are positional: a cell with no value is nil, numeric cells are int64
// or float64, and string cells keep their text verbatim.
func ReadRows(f *excelize.File, sheetName string, limit int) ([]models.CellRow, error) {
	raw, err := readRawRows(f, sheetName, limit)
	if err != nil {
		return nil, err
	}
	offset := leadingBlankColumns(raw)

	result := make([]models.CellRow, 0, len(raw))
	for _, row := range raw {
		var cells []string
		if len(row.cells) > offset {
			cells = row.cells[offset:]
		}
		values := make([]any, len(cells))

		for i, cellValue := range cells {
			if cellValue == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(offset+i+1, row.num)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			values[i] = typedValue(cellValue, cellType)
		}

		result = append(result, models.CellRow{
			R: row.num,
			C: values,
		})
	}

	return result, nil
}

type rawRow struct {
	num   int // 1-based sheet row
	cells []string
}

// readRawRows streams the raw cell text of up to limit rows, skipping the
// rows above the first one that holds a value.
func readRawRows(f *excelize.File, sheetName string, limit int) ([]rawRow, error) {
	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []rawRow
	num := 0
	for len(raw) < limit && rows.Next() {
		num++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 && firstValue(cols) < 0 {
			continue
		}
		raw = append(raw, rawRow{num: num, cells: cols})
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return raw, nil
}

// firstValue returns the index of the first non-empty cell, or -1.
func firstValue(cells []string) int {
	for i, c := range cells {
		if c != "" {
			return i
		}
	}
	return -1
}

// leadingBlankColumns counts the columns that are empty in every row read.
func leadingBlankColumns(raw []rawRow) int {
	offset := -1
	for _, row := range raw {
		i := firstValue(row.cells)
		if i >= 0 && (offset < 0 || i < offset) {
			offset = i
		}
	}
	return max(offset, 0)
}

// typedValue converts raw cell text according to the stored cell type.
func typedValue(s string, cellType excelize.CellType) interface{} {
	switch cellType {
	// CellTypeFormula is t="str": a formula whose cached result is a string.
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError, excelize.CellTypeFormula:
		return s
	case excelize.CellTypeBool:
		return s == "1" || strings.EqualFold(s, "true")
	default:
		return parseValue(s)
	}
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
