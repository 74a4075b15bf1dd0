// Package table reads and writes the delimited tabular format the runoff
// engine exchanges with its callers: UTF-8 text, one header row, comma
// separated.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/runmeter/internal/domain"
)

// Read parses delimited text with one header row into a raw Dataset. Header
// names are kept exactly as written; cell typing happens in domain.Validate.
func Read(r io.Reader) (domain.Dataset, error) {
	cr := csv.NewReader(r)
	// Ragged rows surface later as validation errors, not parse errors.
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read table: %w", err)
	}
	if len(all) == 0 {
		return domain.Dataset{}, errors.New("read table: missing header row")
	}

	return domain.Dataset{Columns: all[0], Rows: all[1:]}, nil
}

// WriteResults serializes computed rows as delimited text with a header row.
// Every numeric cell is rendered with exactly two decimal places, so the
// written table re-parses to the same rounded values.
func WriteResults(w io.Writer, rows []domain.ResultRow) error {
	cw := csv.NewWriter(w)

	header := []string{domain.ColRainfall, domain.ColRunoff, domain.ColRunoffVolume}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, row := range rows {
		rec := []string{cell(row.Rainfall), cell(row.Runoff), cell(row.RunoffVolume)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
