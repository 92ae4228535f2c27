package models

// CellRow represents one positional row read from a sheet.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C holds cell values in column order. A cell with no value is nil.
	C []any `json:"c"`
}
