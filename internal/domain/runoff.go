package domain

import (
	"fmt"
	"time"
)

// Column names expected in uploaded tables and produced in result tables.
// Matching is exact (case- and whitespace-sensitive): the upload surface does
// no normalization, so neither do we.
const (
	ColRainfall    = "Rainfall (mm)"
	ColCurveNumber = "Curve Number"
	ColArea        = "Area (sq.km)"

	ColRunoff       = "Runoff (mm)"
	ColRunoffVolume = "Runoff Volume (m³)"
)

// Dataset is a raw tabular blob: named columns plus zero or more data rows,
// as parsed from a delimited upload. Cells stay strings until Validate types
// them.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Column returns the index of the named column and whether it exists.
func (d Dataset) Column(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the raw cell at data row i (0-based) under the named column.
// Missing columns and short rows yield "".
func (d Dataset) Cell(i int, name string) string {
	j, ok := d.Column(name)
	if !ok || i < 0 || i >= len(d.Rows) || j >= len(d.Rows[i]) {
		return ""
	}
	return d.Rows[i][j]
}

// InputRow is one validated catchment/storm observation, immutable after
// validation.
type InputRow struct {
	Rainfall    float64 // mm, > 0
	CurveNumber float64 // 0 < CN <= 100; only meaningful for the SCS CN model
	Area        float64 // sq.km, > 0
}

// ResultRow is one computed outcome. Values are stored already rounded to two
// decimals; see the package documentation on rounding.
type ResultRow struct {
	Rainfall     float64 `json:"rainfall_mm"`
	Runoff       float64 `json:"runoff_mm"`
	RunoffVolume float64 `json:"runoff_volume_m3"`
}

// BatchResult holds the outcome of computing one batch: successfully computed
// rows in input order, plus the rows that were skipped with a per-row reason.
// len(Rows) + len(Skipped) always equals the input row count.
type BatchResult struct {
	Rows       []ResultRow
	Skipped    []RowComputationError
	Model      Model
	ComputedAt time.Time
}

// ValidationError reports the first problem found in an uploaded table.
// Row is 1-based; zero means the error is table-level (missing column, empty
// table) rather than tied to a particular row. Batch-fatal: nothing can be
// computed without a valid schema.
type ValidationError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Column == "":
		return e.Reason
	case e.Row == 0:
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	case e.Value == "":
		return fmt.Sprintf("column %q, row %d: %s", e.Column, e.Row, e.Reason)
	default:
		return fmt.Sprintf("column %q, row %d: %s (got %q)", e.Column, e.Row, e.Reason, e.Value)
	}
}

// RowComputationError marks a single row whose inputs passed validation but
// are numerically degenerate for the selected model. Row-scoped: the rest of
// the batch still computes.
type RowComputationError struct {
	Row    int    `json:"row"` // 1-based
	Reason string `json:"reason"`
}

func (e RowComputationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
