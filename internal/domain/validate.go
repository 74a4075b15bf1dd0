package domain

import (
	"math"
	"strconv"
	"strings"
)

// Validate turns a raw Dataset into typed input rows for the given model, or
// fails with a *ValidationError naming the first offending column and row.
//
// Rules run in a fixed order so the reported failure is deterministic:
// required columns present, at least one data row, every required cell a
// finite number, then per-row range checks. Within a rule, rows are scanned
// in order and columns in reporting order (Rainfall, Curve Number, Area).
// Pure function: d is never modified.
func Validate(d Dataset, model Model) ([]InputRow, error) {
	required := model.requiredColumns()

	for _, col := range required {
		if _, ok := d.Column(col); !ok {
			return nil, &ValidationError{Column: col, Reason: "required column is missing"}
		}
	}

	if len(d.Rows) == 0 {
		return nil, &ValidationError{Reason: "table has no data rows"}
	}

	rows := make([]InputRow, len(d.Rows))
	for i := range d.Rows {
		for _, col := range required {
			v, err := numericCell(d, i, col)
			if err != nil {
				return nil, err
			}
			switch col {
			case ColRainfall:
				rows[i].Rainfall = v
			case ColCurveNumber:
				rows[i].CurveNumber = v
			case ColArea:
				rows[i].Area = v
			}
		}
	}

	for i, row := range rows {
		if row.Rainfall <= 0 {
			return nil, rangeError(d, i, ColRainfall, "rainfall must be greater than zero")
		}
		if model == ModelSCSCN && (row.CurveNumber <= 0 || row.CurveNumber > 100) {
			return nil, rangeError(d, i, ColCurveNumber, "curve number must be in (0, 100]")
		}
		if row.Area <= 0 {
			return nil, rangeError(d, i, ColArea, "area must be greater than zero")
		}
	}

	return rows, nil
}

// numericCell reads one required cell and parses it as a finite number.
func numericCell(d Dataset, i int, col string) (float64, error) {
	raw := strings.TrimSpace(d.Cell(i, col))
	if raw == "" {
		return 0, &ValidationError{Column: col, Row: i + 1, Reason: "cell is empty or missing"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Column: col, Row: i + 1, Value: raw, Reason: "not a finite number"}
	}
	return v, nil
}

func rangeError(d Dataset, i int, col, reason string) error {
	return &ValidationError{
		Column: col,
		Row:    i + 1,
		Value:  strings.TrimSpace(d.Cell(i, col)),
		Reason: reason,
	}
}
