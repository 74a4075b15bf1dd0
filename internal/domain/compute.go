package domain

import "math"

// Compute applies the selected model to every row of a validated batch.
// Row failures are collected in Skipped rather than aborting the batch, and
// result order matches input order. Rows are independent of each other, so
// ResultRow i derives solely from InputRow i.
func Compute(rows []InputRow, model Model) BatchResult {
	rm := modelFor(model)
	res := BatchResult{
		Rows:       make([]ResultRow, 0, len(rows)),
		Model:      model,
		ComputedAt: clock.Now(),
	}

	for i, row := range rows {
		q, vol, err := rm.computeRow(row)
		if err != nil {
			res.Skipped = append(res.Skipped, RowComputationError{Row: i + 1, Reason: err.Error()})
			continue
		}
		res.Rows = append(res.Rows, ResultRow{
			Rainfall:     round2(row.Rainfall),
			Runoff:       round2(q),
			RunoffVolume: round2(vol),
		})
	}

	return res
}

// ComputeStrict is the fail-fast variant of Compute: the first degenerate row
// aborts the batch and no results are returned.
func ComputeStrict(rows []InputRow, model Model) ([]ResultRow, error) {
	rm := modelFor(model)
	out := make([]ResultRow, len(rows))

	for i, row := range rows {
		q, vol, err := rm.computeRow(row)
		if err != nil {
			return nil, RowComputationError{Row: i + 1, Reason: err.Error()}
		}
		out[i] = ResultRow{
			Rainfall:     round2(row.Rainfall),
			Runoff:       round2(q),
			RunoffVolume: round2(vol),
		}
	}

	return out, nil
}

// round2 rounds half away from zero to two decimals, matching the display
// contract for exported tables.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
