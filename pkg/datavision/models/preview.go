// Package models defines data structures shared by the extraction, analysis
// and chat stages.
package models

// MaxSampleRows is the number of data rows carried by a preview.
const MaxSampleRows = 10

// SpreadsheetPreview is a bounded structural excerpt of the first sheet of a
// workbook: its header row plus up to MaxSampleRows data rows.
type SpreadsheetPreview struct {
	// SheetName is the name of the sheet the preview was taken from.
	SheetName string `json:"sheetName,omitempty"`
	// Headers holds the cells of the first used row, in column order.
	Headers []string `json:"headers"`
	// SampleRows holds up to MaxSampleRows rows following the header. Each
	// cell is a string, int64, float64, bool, or nil for a cell with no value.
	SampleRows [][]any `json:"sampleData"`
}
